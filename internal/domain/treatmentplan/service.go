package treatmentplan

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/clinident/clinident/pkg/clinicerr"
)

type Service struct {
	plans PlanRepository
	mods  ModificationRepository
}

func NewService(plans PlanRepository, mods ModificationRepository) *Service {
	return &Service{plans: plans, mods: mods}
}

func (s *Service) CreatePlan(ctx context.Context, p *Plan) error {
	if p.PatientID == uuid.Nil {
		return clinicerr.Invalid("patient_id", "is required")
	}
	if p.CreatedBy == uuid.Nil {
		return clinicerr.Invalid("created_by", "is required")
	}
	switch p.Kind {
	case KindGeneral, KindIntakeRecord, KindInitialReevaluation:
	default:
		return clinicerr.Invalid("kind", "unknown plan kind")
	}
	p.Status = StatusDraft
	return s.plans.Create(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Plan, error) {
	return s.plans.ListByPatient(ctx, patientID)
}

func (s *Service) ActivePlan(ctx context.Context, patientID uuid.UUID) (*Plan, error) {
	return s.plans.ActiveByPatient(ctx, patientID)
}

func (s *Service) UpdateDocument(ctx context.Context, id uuid.UUID, doc Document) error {
	return s.plans.UpdateDocument(ctx, id, doc)
}

// ApprovePlan promotes a draft. The repository closes any prior active
// plan of the patient in the same transaction.
func (s *Service) ApprovePlan(ctx context.Context, id, reviewerID uuid.UUID) error {
	ok, err := s.plans.Approve(ctx, id, reviewerID)
	if err != nil {
		return err
	}
	if !ok {
		p, err := s.plans.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return clinicerr.Conflict("treatment plan", id.String(), p.Status)
	}
	return nil
}

func (s *Service) ClosePlan(ctx context.Context, id uuid.UUID) error {
	ok, err := s.plans.Close(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		p, err := s.plans.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return clinicerr.Conflict("treatment plan", id.String(), p.Status)
	}
	return nil
}

// Items recomputes the plan's flat item sequence from its document.
func (s *Service) Items(ctx context.Context, planID uuid.UUID) ([]Item, error) {
	p, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return Extract(p), nil
}

// RequestModification records a proposed change against the patient's
// active plan.
func (s *Service) RequestModification(ctx context.Context, m *ModificationRequest) error {
	if strings.TrimSpace(m.Description) == "" {
		return clinicerr.Invalid("description", "is required")
	}
	if m.RequesterID == uuid.Nil {
		return clinicerr.Invalid("requester_id", "is required")
	}
	p, err := s.plans.GetByID(ctx, m.PlanID)
	if err != nil {
		return err
	}
	if !p.Active() {
		return clinicerr.Conflict("treatment plan", p.ID.String(), p.Status)
	}
	m.PatientID = p.PatientID
	return s.mods.Create(ctx, m)
}

func (s *Service) GetModification(ctx context.Context, id uuid.UUID) (*ModificationRequest, error) {
	return s.mods.GetByID(ctx, id)
}

func (s *Service) ListModificationsByPlan(ctx context.Context, planID uuid.UUID) ([]*ModificationRequest, error) {
	return s.mods.ListByPlan(ctx, planID)
}

func (s *Service) ListModificationsByState(ctx context.Context, state string, limit, offset int) ([]*ModificationRequest, int, error) {
	switch state {
	case StatePending, StateApproved, StateRejected:
	default:
		return nil, 0, clinicerr.Invalid("state", "unknown state")
	}
	return s.mods.ListByState(ctx, state, limit, offset)
}

// ApproveModification decides a pending request. Losing a race against
// another decision reports the conflict, never a second write.
func (s *Service) ApproveModification(ctx context.Context, id, reviewerID uuid.UUID) error {
	return s.decide(ctx, id, reviewerID, StateApproved, nil)
}

// RejectModification requires a comment telling the requester what to
// change.
func (s *Service) RejectModification(ctx context.Context, id, reviewerID uuid.UUID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return clinicerr.ErrMissingComment
	}
	return s.decide(ctx, id, reviewerID, StateRejected, &comment)
}

func (s *Service) decide(ctx context.Context, id, reviewerID uuid.UUID, state string, comment *string) error {
	ok, err := s.mods.Decide(ctx, id, reviewerID, state, comment)
	if err != nil {
		return err
	}
	if !ok {
		m, err := s.mods.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return clinicerr.Conflict("modification request", id.String(), m.State)
	}
	return nil
}
