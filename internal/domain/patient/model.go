package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. Records are created by the intake
// process and never deleted; after creation only the contact details and
// the assigned caregiver change.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	DocumentNo  *string   `db:"document_no" json:"document_no,omitempty"`
	Email       *string   `db:"email" json:"email,omitempty"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	Address     *string   `db:"address" json:"address,omitempty"`
	CaregiverID uuid.UUID `db:"caregiver_id" json:"caregiver_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name used in listings.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
