package booking

import (
	"time"

	"github.com/clinident/clinident/pkg/clinicerr"
)

// ValidateDate checks a candidate appointment date against the chosen
// weekday, the holiday set and today, in that order, stopping at the
// first failure. The comparison with today is date-only.
func ValidateDate(candidate time.Time, weekdayLabel string, holidays map[string]bool, today time.Time) error {
	wd, err := ParseWeekday(weekdayLabel)
	if err != nil {
		return err
	}
	if candidate.Weekday() != wd {
		return clinicerr.Invalid("date", "not the expected weekday")
	}
	if holidays[DateKey(candidate)] {
		return clinicerr.Invalid("date", "is a holiday")
	}
	if DateKey(candidate) < DateKey(today) {
		return clinicerr.Invalid("date", "is in the past")
	}
	return nil
}

// DateKey collapses an instant to its civil date, for date-only
// comparison and holiday lookup.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// HolidaySet builds the lookup used by ValidateDate.
func HolidaySet(holidays []*Holiday) map[string]bool {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[DateKey(h.Date)] = true
	}
	return set
}
