package booking

import (
	"fmt"
	"time"

	"github.com/clinident/clinident/pkg/clinicerr"
)

// TimeOfDay is a clock time within the clinic's civil day, stored as
// minutes since midnight. It marshals as "15:04".
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// At converts a wall-clock instant into the clinic-local time of day.
func At(t time.Time, loc *time.Location) TimeOfDay {
	local := t.In(loc)
	return TimeOfDay(local.Hour()*60 + local.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// AddMinutes returns the time of day n minutes later. Overflow past the
// hour boundary is carried into the hour.
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	return t + TimeOfDay(n)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(data []byte) error {
	parsed, err := ParseTimeOfDay(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// The clinic runs on a single fixed civil calendar; weekday labels are
// its Spanish day names.
var weekdayByLabel = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
}

var labelByWeekday = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miercoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sabado",
}

// ParseWeekday resolves a clinic weekday label.
func ParseWeekday(label string) (time.Weekday, error) {
	wd, ok := weekdayByLabel[label]
	if !ok {
		return 0, clinicerr.Invalid("weekday", fmt.Sprintf("unknown weekday label %q", label))
	}
	return wd, nil
}

// WeekdayLabel returns the clinic label for a weekday.
func WeekdayLabel(wd time.Weekday) string {
	return labelByWeekday[wd]
}
