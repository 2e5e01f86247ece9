package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. An appointment is immutable after creation
// except for its status.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// ScheduleWindow maps to the schedule_window table: one recurring weekly
// range of clinic hours.
type ScheduleWindow struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Weekday   string    `db:"weekday" json:"weekday"`
	Start     TimeOfDay `db:"start_minutes" json:"start"`
	End       TimeOfDay `db:"end_minutes" json:"end"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Contains reports whether the time of day falls within the window,
// bounds inclusive.
func (w *ScheduleWindow) Contains(t TimeOfDay) bool {
	return t >= w.Start && t <= w.End
}

// Holiday maps to the holiday table. A holiday date is excluded from
// booking regardless of weekday.
type Holiday struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Date time.Time `db:"holiday_date" json:"date"`
	Name *string   `db:"name" json:"name,omitempty"`
}

// ExceptionalPermission maps to the exceptional_permission table: a
// time-bounded override that lets one caregiver book outside clinic
// hours.
type ExceptionalPermission struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CaregiverID uuid.UUID `db:"caregiver_id" json:"caregiver_id"`
	ValidFrom   time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil  time.Time `db:"valid_until" json:"valid_until"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether the permission spans the given instant.
func (p *ExceptionalPermission) Covers(at time.Time) bool {
	return !at.Before(p.ValidFrom) && !at.After(p.ValidUntil)
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	CaregiverID uuid.UUID `db:"caregiver_id" json:"caregiver_id"`
	Date        time.Time `db:"appointment_date" json:"date"`
	WindowID    uuid.UUID `db:"window_id" json:"window_id"`
	Slot        TimeOfDay `db:"slot_minutes" json:"slot"`
	Treatment   string    `db:"treatment" json:"treatment"`
	Note        *string   `db:"note" json:"note,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
