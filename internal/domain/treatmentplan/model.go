package treatmentplan

import (
	"time"

	"github.com/google/uuid"
)

// Plan kinds. A general plan carries the full phase document; the two
// special kinds are single-item plans with no phase structure.
const (
	KindGeneral             = "general"
	KindIntakeRecord        = "intake_record"
	KindInitialReevaluation = "initial_reevaluation"
)

// Plan lifecycle. A patient has at most one active plan: approved and
// not yet closed.
const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
	StatusClosed   = "closed"
)

// Plan maps to the treatment_plan table.
type Plan struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	Kind       string     `db:"kind" json:"kind"`
	Status     string     `db:"status" json:"status"`
	Document   Document   `db:"document" json:"document"`
	CreatedBy  uuid.UUID  `db:"created_by" json:"created_by"`
	ApprovedBy *uuid.UUID `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	ClosedAt   *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the plan is the patient's live plan.
func (p *Plan) Active() bool {
	return p.Status == StatusApproved
}

// Item is one atomic unit of care derived from a plan document. It is
// never stored: callers recompute it from the document on demand.
// Identity is the (Type, Specification) pair, unique within a plan.
type Item struct {
	Phase         string `json:"phase"`
	Type          string `json:"type"`
	Specification string `json:"specification"`
}

// Identity returns the item's identity key.
func (i Item) Identity() ItemIdentity {
	return ItemIdentity{Type: i.Type, Specification: i.Specification}
}

// ItemIdentity is the comparable (type, specification) pair shared with
// report items.
type ItemIdentity struct {
	Type          string
	Specification string
}

// ModificationRequest maps to the modification_request table: a
// proposed change to an active plan, decided by a reviewer with the
// same terminal-once rule as report items.
type ModificationRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PlanID      uuid.UUID  `db:"plan_id" json:"plan_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	RequesterID uuid.UUID  `db:"requester_id" json:"requester_id"`
	Description string     `db:"description" json:"description"`
	State       string     `db:"state" json:"state"`
	ReviewerID  *uuid.UUID `db:"reviewer_id" json:"reviewer_id,omitempty"`
	DecidedAt   *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	Comment     *string    `db:"comment" json:"comment,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Modification request states, same shape as report item approval.
const (
	StatePending  = "pending"
	StateApproved = "approved"
	StateRejected = "rejected"
)
