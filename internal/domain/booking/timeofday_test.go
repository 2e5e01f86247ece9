package booking

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("13:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != TimeOfDay(13*60+30) {
		t.Errorf("expected 810 minutes, got %d", got)
	}
	if got.String() != "13:30" {
		t.Errorf("round trip mismatch: %s", got)
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, s := range []string{"25:00", "12:75", "noon", ""} {
		if _, err := ParseTimeOfDay(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestAt_UsesClinicLocation(t *testing.T) {
	loc := time.FixedZone("clinic", -5*3600)
	// 20:00 UTC is 15:00 clinic time.
	instant := time.Date(2025, 6, 13, 20, 0, 0, 0, time.UTC)
	if got := At(instant, loc); got.String() != "15:00" {
		t.Errorf("expected 15:00, got %s", got)
	}
}

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday("viernes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wd != time.Friday {
		t.Errorf("expected Friday, got %v", wd)
	}
	if _, err := ParseWeekday("friday"); err == nil {
		t.Error("expected error for non-clinic label")
	}
	if WeekdayLabel(time.Wednesday) != "miercoles" {
		t.Errorf("unexpected label: %s", WeekdayLabel(time.Wednesday))
	}
}

func TestTimeOfDay_TextRoundTrip(t *testing.T) {
	orig := TimeOfDay(9 * 60)
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back TimeOfDay
	if err := back.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != orig {
		t.Errorf("expected %v, got %v", orig, back)
	}
}
