package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinident/clinident/internal/domain/treatmentplan"
)

// Reported progress: what the caregiver claims about a treatment item.
const (
	ProgressComplete        = "complete"
	ProgressInProcess       = "in_process"
	ProgressWithCorrections = "submitted_with_corrections"
)

// Approval: what the reviewer decided. Pending transitions at most once.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Report maps to the report table: one submission event by a caregiver
// about progress under a plan.
type Report struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	PlanID      uuid.UUID `db:"plan_id" json:"plan_id"`
	CaregiverID uuid.UUID `db:"caregiver_id" json:"caregiver_id"`
	Note        *string   `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Items []*Item `db:"-" json:"items,omitempty"`
}

// Item maps to the report_item table: one claim about one treatment
// item identity. A decided item is never mutated again; re-claiming the
// same identity takes a new row.
type Item struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	ReportID         uuid.UUID  `db:"report_id" json:"report_id"`
	ItemType         string     `db:"item_type" json:"item_type"`
	Specification    string     `db:"specification" json:"specification"`
	ReportedProgress string     `db:"reported_progress" json:"reported_progress"`
	Approval         string     `db:"approval" json:"approval"`
	ReviewerID       *uuid.UUID `db:"reviewer_id" json:"reviewer_id,omitempty"`
	DecidedAt        *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	RejectionComment *string    `db:"rejection_comment" json:"rejection_comment,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// Identity returns the treatment item identity the claim refers to.
func (i *Item) Identity() treatmentplan.ItemIdentity {
	return treatmentplan.ItemIdentity{Type: i.ItemType, Specification: i.Specification}
}

// ValidProgress reports whether s is one of the claimable progress
// values.
func ValidProgress(s string) bool {
	switch s {
	case ProgressComplete, ProgressInProcess, ProgressWithCorrections:
		return true
	}
	return false
}
