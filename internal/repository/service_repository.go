package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkaravaev/workhub-backend/internal/models"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrRequestNotFound = errors.New("service request not found")
)

type ServiceRepository struct {
	db *sqlx.DB
}

func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) CreateService(ctx context.Context, s *models.Service) error {
	query := `
		INSERT INTO services (freelancer_id, title, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, completed_orders, is_active, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, s.FreelancerID, s.Title, s.Description, s.Price).
		Scan(&s.ID, &s.CompletedOrders, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

func (r *ServiceRepository) GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var s models.Service
	err := r.db.GetContext(ctx, &s, `SELECT * FROM services WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	return &s, err
}

func (r *ServiceRepository) ListServices(ctx context.Context, limit, offset int) ([]models.Service, error) {
	var services []models.Service
	err := r.db.SelectContext(ctx, &services, `
		SELECT * FROM services WHERE is_active = true
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return services, err
}

// IncrementCompletedOrders увеличивает денормализованный счётчик выполненных
// заказов услуги. Вызывается best-effort после завершения проекта.
func (r *ServiceRepository) IncrementCompletedOrders(ctx context.Context, serviceID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE services SET completed_orders = completed_orders + 1, updated_at = NOW() WHERE id = $1
	`, serviceID)
	if err != nil {
		return fmt.Errorf("increment completed orders: %w", err)
	}
	return nil
}

func (r *ServiceRepository) CreateRequest(ctx context.Context, req *models.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (client_id, service_id, title, description, budget, proposed_budget, deadline_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		req.ClientID, req.ServiceID, req.Title, req.Description,
		req.Budget, req.ProposedBudget, req.DeadlineAt, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *ServiceRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := r.db.GetContext(ctx, &req, `SELECT * FROM service_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	return &req, err
}

func (r *ServiceRepository) ListRequestsByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.ServiceRequest, error) {
	var requests []models.ServiceRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM service_requests WHERE client_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	return requests, err
}

func (r *ServiceRepository) ListOpenRequests(ctx context.Context, limit, offset int) ([]models.ServiceRequest, error) {
	var requests []models.ServiceRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM service_requests WHERE status = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, models.RequestStatusOpen, limit, offset)
	return requests, err
}
