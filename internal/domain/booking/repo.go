package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type WindowRepository interface {
	Create(ctx context.Context, w *ScheduleWindow) error
	GetByID(ctx context.Context, id uuid.UUID) (*ScheduleWindow, error)
	List(ctx context.Context) ([]*ScheduleWindow, error)
	ListActive(ctx context.Context) ([]*ScheduleWindow, error)
	Update(ctx context.Context, w *ScheduleWindow) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type HolidayRepository interface {
	Create(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByYearRange(ctx context.Context, fromYear, toYear int) ([]*Holiday, error)
}

type PermissionRepository interface {
	Create(ctx context.Context, p *ExceptionalPermission) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*ExceptionalPermission, error)
	ListValidAt(ctx context.Context, caregiverID uuid.UUID, at time.Time) ([]*ExceptionalPermission, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// Cancel flips status to cancelled only when it is still scheduled,
	// reporting whether the transition happened.
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
}
