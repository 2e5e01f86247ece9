package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinident/clinident/pkg/clinicerr"
)

type Service struct {
	windows      WindowRepository
	holidays     HolidayRepository
	permissions  PermissionRepository
	appointments AppointmentRepository

	loc *time.Location
	now func() time.Time
}

func NewService(windows WindowRepository, holidays HolidayRepository, permissions PermissionRepository, appointments AppointmentRepository, loc *time.Location) *Service {
	return &Service{
		windows:      windows,
		holidays:     holidays,
		permissions:  permissions,
		appointments: appointments,
		loc:          loc,
		now:          time.Now,
	}
}

// =========== schedule window catalog ===========

func (s *Service) CreateWindow(ctx context.Context, w *ScheduleWindow) error {
	if err := validateWindow(w); err != nil {
		return err
	}
	return s.windows.Create(ctx, w)
}

func (s *Service) UpdateWindow(ctx context.Context, w *ScheduleWindow) error {
	if w.ID == uuid.Nil {
		return clinicerr.Invalid("id", "is required")
	}
	if err := validateWindow(w); err != nil {
		return err
	}
	return s.windows.Update(ctx, w)
}

func (s *Service) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	return s.windows.Delete(ctx, id)
}

func (s *Service) ListWindows(ctx context.Context) ([]*ScheduleWindow, error) {
	return s.windows.List(ctx)
}

func validateWindow(w *ScheduleWindow) error {
	if _, err := ParseWeekday(w.Weekday); err != nil {
		return err
	}
	if w.End < w.Start {
		return clinicerr.Invalid("end", "must not precede start")
	}
	return nil
}

// =========== holidays ===========

func (s *Service) CreateHoliday(ctx context.Context, h *Holiday) error {
	if h.Date.IsZero() {
		return clinicerr.Invalid("date", "is required")
	}
	return s.holidays.Create(ctx, h)
}

func (s *Service) DeleteHoliday(ctx context.Context, id uuid.UUID) error {
	return s.holidays.Delete(ctx, id)
}

func (s *Service) ListHolidays(ctx context.Context, fromYear, toYear int) ([]*Holiday, error) {
	if toYear < fromYear {
		return nil, clinicerr.Invalid("to_year", "must not precede from_year")
	}
	return s.holidays.ListByYearRange(ctx, fromYear, toYear)
}

// =========== exceptional permissions ===========

func (s *Service) GrantPermission(ctx context.Context, p *ExceptionalPermission) error {
	if p.CaregiverID == uuid.Nil {
		return clinicerr.Invalid("caregiver_id", "is required")
	}
	if p.ValidUntil.Before(p.ValidFrom) {
		return clinicerr.Invalid("valid_until", "must not precede valid_from")
	}
	return s.permissions.Create(ctx, p)
}

func (s *Service) RevokePermission(ctx context.Context, id uuid.UUID) error {
	return s.permissions.Delete(ctx, id)
}

func (s *Service) ListPermissions(ctx context.Context, caregiverID uuid.UUID) ([]*ExceptionalPermission, error) {
	return s.permissions.ListByCaregiver(ctx, caregiverID)
}

// =========== availability ===========

// Availability evaluates the booking gate for the actor at this moment.
// The clock is read here, per call, so a caregiver polling near the edge
// of a window gets the live answer.
func (s *Service) Availability(ctx context.Context, caregiverID uuid.UUID, role string) (Decision, error) {
	now := s.now()
	windows, err := s.windows.ListActive(ctx)
	if err != nil {
		return Decision{}, err
	}
	perms, err := s.permissions.ListValidAt(ctx, caregiverID, now)
	if err != nil {
		return Decision{}, err
	}
	return Authorize(role, now, s.loc, windows, perms), nil
}

// Slots returns the bookable times of one window.
func (s *Service) Slots(ctx context.Context, windowID uuid.UUID) ([]TimeOfDay, error) {
	w, err := s.windows.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	return w.Slots(), nil
}

// =========== appointments ===========

// Book runs the full booking pipeline: gate, then window lookup, then
// date validation against the window's weekday and the holiday calendar,
// then slot membership, and only then persistence.
func (s *Service) Book(ctx context.Context, a *Appointment, role string) error {
	if a.PatientID == uuid.Nil {
		return clinicerr.Invalid("patient_id", "is required")
	}
	if a.CaregiverID == uuid.Nil {
		return clinicerr.Invalid("caregiver_id", "is required")
	}
	if strings.TrimSpace(a.Treatment) == "" {
		return clinicerr.Invalid("treatment", "is required")
	}

	decision, err := s.Availability(ctx, a.CaregiverID, role)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return clinicerr.Invalid("booking", decision.Reason)
	}

	w, err := s.windows.GetByID(ctx, a.WindowID)
	if err != nil {
		return err
	}
	if !w.Active {
		return clinicerr.Invalid("window_id", "window is not active")
	}

	year := a.Date.Year()
	holidays, err := s.holidays.ListByYearRange(ctx, year, year)
	if err != nil {
		return err
	}
	if err := ValidateDate(a.Date, w.Weekday, HolidaySet(holidays), s.now().In(s.loc)); err != nil {
		return err
	}

	if !slotInWindow(w, a.Slot) {
		return clinicerr.Invalid("slot", "is not a bookable time of this window")
	}

	return s.appointments.Create(ctx, a)
}

func slotInWindow(w *ScheduleWindow, slot TimeOfDay) bool {
	for _, t := range w.Slots() {
		if t == slot {
			return true
		}
	}
	return false
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByCaregiver(ctx, caregiverID, limit, offset)
}

// CancelAppointment is first-writer-wins: cancelling an appointment that
// already left the scheduled state reports a conflict, not success.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	ok, err := s.appointments.Cancel(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		a, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return clinicerr.Conflict("appointment", id.String(), a.Status)
	}
	return nil
}
