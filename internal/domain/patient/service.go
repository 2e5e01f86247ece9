package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/clinident/clinident/pkg/clinicerr"
)

type Service struct {
	patients Repository
}

func NewService(repo Repository) *Service {
	return &Service{patients: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return clinicerr.Invalid("first_name", "is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return clinicerr.Invalid("last_name", "is required")
	}
	if p.CaregiverID == uuid.Nil {
		return clinicerr.Invalid("caregiver_id", "is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.patients.ListByCaregiver(ctx, caregiverID, limit, offset)
}

func (s *Service) SearchByName(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	if strings.TrimSpace(name) == "" {
		return s.patients.List(ctx, limit, offset)
	}
	return s.patients.SearchByName(ctx, name, limit, offset)
}

// UpdateContact replaces only the contact fields of an existing patient.
func (s *Service) UpdateContact(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return clinicerr.Invalid("id", "is required")
	}
	return s.patients.UpdateContact(ctx, p)
}

// Reassign moves the patient to a different caregiver. No other field
// is touched.
func (s *Service) Reassign(ctx context.Context, id, caregiverID uuid.UUID) error {
	if caregiverID == uuid.Nil {
		return clinicerr.Invalid("caregiver_id", "is required")
	}
	return s.patients.Reassign(ctx, id, caregiverID)
}
