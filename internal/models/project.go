package models

import (
	"time"

	"github.com/google/uuid"
)

// Project описывает единицу работы по договору между клиентом и фрилансером.
// Создаётся атомарно при принятии предложения и никогда не удаляется физически.
type Project struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ClientID           uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID       uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	RequestID          uuid.UUID  `db:"request_id" json:"request_id"`
	ProposalID         uuid.UUID  `db:"proposal_id" json:"proposal_id"`
	Title              string     `db:"title" json:"title"`
	Status             string     `db:"status" json:"status"`
	ContractPrice      *float64   `db:"contract_price" json:"contract_price,omitempty"`
	ContractDeadline   *time.Time `db:"contract_deadline" json:"contract_deadline,omitempty"`
	ClientAccepted     bool       `db:"client_accepted" json:"client_accepted"`
	FreelancerAccepted bool       `db:"freelancer_accepted" json:"freelancer_accepted"`
	PaymentStatus      string     `db:"payment_status" json:"payment_status"`
	ContractAcceptedAt *time.Time `db:"contract_accepted_at" json:"contract_accepted_at,omitempty"`
	StartedAt          *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// IsParticipant сообщает, является ли пользователь стороной проекта.
func (p *Project) IsParticipant(userID uuid.UUID) bool {
	return p.ClientID == userID || p.FreelancerID == userID
}

// ProjectScope — неизменяемый снимок согласованных условий проекта.
// Номера версий строго возрастают начиная с 1 и никогда не переиспользуются.
type ProjectScope struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ProjectID     uuid.UUID  `db:"project_id" json:"project_id"`
	Version       int        `db:"version" json:"version"`
	AuthorID      uuid.UUID  `db:"author_id" json:"author_id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Deliverables  string     `db:"deliverables" json:"deliverables"`
	Exclusions    string     `db:"exclusions" json:"exclusions"`
	RevisionLimit *int       `db:"revision_limit" json:"revision_limit,omitempty"`
	Deadline      *time.Time `db:"deadline" json:"deadline,omitempty"`
	Price         *float64   `db:"price" json:"price,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
