package treatmentplan

import (
	"context"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Plan, error)
	// ActiveByPatient returns the patient's approved, unclosed plan, or
	// NotFound when none exists.
	ActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Plan, error)
	UpdateDocument(ctx context.Context, id uuid.UUID, doc Document) error
	// Approve promotes a draft plan and closes any prior active plan of
	// the same patient in one transaction. It reports false when the
	// plan was not in draft.
	Approve(ctx context.Context, id, reviewerID uuid.UUID) (bool, error)
	// Close ends an active plan. Reports false when the plan was not
	// approved.
	Close(ctx context.Context, id uuid.UUID) (bool, error)
}

type ModificationRepository interface {
	Create(ctx context.Context, m *ModificationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ModificationRequest, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*ModificationRequest, error)
	ListByState(ctx context.Context, state string, limit, offset int) ([]*ModificationRequest, int, error)
	// Decide flips a pending request to the given terminal state,
	// recording reviewer, timestamp and optional comment. Reports false
	// when the request had already left pending.
	Decide(ctx context.Context, id, reviewerID uuid.UUID, state string, comment *string) (bool, error)
}
