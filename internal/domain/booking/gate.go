package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/clinident/clinident/internal/platform/auth"
)

// Decision is the outcome of an availability check. A denial is a
// designed result, not an error: the reason tells the caregiver when
// booking is possible.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Authorize decides whether the actor may book right now. Reviewers are
// never time-boxed. Everyone else must hit an active window for the
// current clinic-local weekday and time of day (bounds inclusive), or
// hold an exceptional permission spanning now. The wall clock is read at
// call time, never cached.
func Authorize(role string, now time.Time, loc *time.Location, windows []*ScheduleWindow, perms []*ExceptionalPermission) Decision {
	if role == auth.RoleReviewer || role == auth.RoleAdmin {
		return Decision{Allowed: true}
	}

	local := now.In(loc)
	label := WeekdayLabel(local.Weekday())
	tod := At(now, loc)

	for _, w := range windows {
		if !w.Active {
			continue
		}
		if w.Weekday == label && w.Contains(tod) {
			return Decision{Allowed: true}
		}
	}

	for _, p := range perms {
		if p.Covers(now) {
			return Decision{Allowed: true}
		}
	}

	return Decision{Allowed: false, Reason: deniedReason(windows)}
}

// deniedReason enumerates the active weekly windows so the message stays
// in sync with the catalog.
func deniedReason(windows []*ScheduleWindow) string {
	var hours []string
	for _, w := range windows {
		if !w.Active {
			continue
		}
		hours = append(hours, fmt.Sprintf("%s %s-%s", w.Weekday, w.Start, w.End))
	}
	if len(hours) == 0 {
		return "booking is not available: no clinic hours are configured"
	}
	return "booking is only available during clinic hours: " + strings.Join(hours, ", ")
}
