package models

import (
	"time"

	"github.com/google/uuid"
)

// Service описывает опубликованную услугу фрилансера.
type Service struct {
	ID              uuid.UUID `db:"id" json:"id"`
	FreelancerID    uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	Price           *float64  `db:"price" json:"price,omitempty"`
	CompletedOrders int       `db:"completed_orders" json:"completed_orders"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceRequest описывает заявку клиента на найм услуги.
// ServiceID может быть пустым для свободной заявки без привязки к услуге.
type ServiceRequest struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	ServiceID      *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	Budget         *float64   `db:"budget" json:"budget,omitempty"`
	ProposedBudget *float64   `db:"proposed_budget" json:"proposed_budget,omitempty"`
	DeadlineAt     *time.Time `db:"deadline_at" json:"deadline_at,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
