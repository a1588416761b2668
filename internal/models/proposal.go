package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal представляет отклик фрилансера на заявку клиента.
// На пару (фрилансер, заявка) допускается не более одного отклика.
type Proposal struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	RequestID        uuid.UUID  `db:"request_id" json:"request_id"`
	FreelancerID     uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Message          string     `db:"message" json:"message"`
	ProposedPrice    *float64   `db:"proposed_price" json:"proposed_price,omitempty"`
	ProposedDeadline *time.Time `db:"proposed_deadline" json:"proposed_deadline,omitempty"`
	ScopeText        string     `db:"scope_text" json:"scope_text"`
	Status           string     `db:"status" json:"status"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
