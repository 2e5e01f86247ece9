package report

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateReport stores the report and its items as one unit: a
	// failure on any item leaves no report behind.
	CreateReport(ctx context.Context, r *Report, items []*Item) error
	GetReport(ctx context.Context, id uuid.UUID) (*Report, error)
	ListReportsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error)

	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ListItemsByApproval(ctx context.Context, approval string, limit, offset int) ([]*Item, int, error)
	ListItemsByPlan(ctx context.Context, planID uuid.UUID) ([]*Item, error)
	// ListDecidedByCaregiver returns the caregiver's items in the given
	// terminal approval state, across all of their reports and plans.
	ListDecidedByCaregiver(ctx context.Context, caregiverID uuid.UUID, approval string) ([]*Item, error)

	// Approve flips a pending item to approved, optionally replacing
	// the reported progress. Reports false when the item had already
	// left pending.
	Approve(ctx context.Context, id, reviewerID uuid.UUID, progress *string) (bool, error)
	// Reject flips a pending item to rejected with the comment. Same
	// compare-and-set contract as Approve.
	Reject(ctx context.Context, id, reviewerID uuid.UUID, comment string) (bool, error)
}
