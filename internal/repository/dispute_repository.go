package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/repository/common"
)

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create открывает спор и пишет первую запись в журнал одной транзакцией.
func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO disputes (project_id, client_id, reason, policy_accepted, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, d.ProjectID, d.ClientID, d.Reason, d.PolicyAccepted, d.Status).
			Scan(&d.ID, &d.CreatedAt); err != nil {
			return fmt.Errorf("create dispute: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dispute_logs (dispute_id, author_id, action, note)
			VALUES ($1, $2, 'opened', $3)
		`, d.ID, d.ClientID, d.Reason); err != nil {
			return fmt.Errorf("create dispute log: %w", err)
		}

		return nil
	})
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM disputes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	return &d, err
}

func (r *DisputeRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE project_id = $1 ORDER BY created_at ASC
	`, projectID)
	return disputes, err
}

// CountByProject считает все споры проекта независимо от статуса:
// лимит пожизненный.
func (r *DisputeRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM disputes WHERE project_id = $1`, projectID)
	return count, err
}

func (r *DisputeRepository) HasPending(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM disputes WHERE project_id = $1 AND status = $2
	`, projectID, models.DisputeStatusPending)
	return count > 0, err
}

// Resolve фиксирует решение администратора: статус спора, запись журнала и,
// при принятом споре, возврат проекта в работу — всё одной транзакцией.
func (r *DisputeRepository) Resolve(ctx context.Context, disputeID, adminID uuid.UUID, status, note string, reopenProject bool) (*models.Dispute, error) {
	var d models.Dispute

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now()
		err := tx.GetContext(ctx, &d, `
			UPDATE disputes SET status = $2, resolved_by = $3, resolved_at = $4
			WHERE id = $1 AND status = $5
			RETURNING *
		`, disputeID, status, adminID, now, models.DisputeStatusPending)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDisputeNotFound
		}
		if err != nil {
			return err
		}

		action := "rejected"
		if status == models.DisputeStatusResolved {
			action = "accepted"
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dispute_logs (dispute_id, author_id, action, note)
			VALUES ($1, $2, $3, $4)
		`, disputeID, adminID, action, note); err != nil {
			return fmt.Errorf("create dispute log: %w", err)
		}

		if reopenProject {
			res, err := tx.ExecContext(ctx, `
				UPDATE projects SET status = $2, completed_at = NULL, updated_at = NOW()
				WHERE id = $1 AND status = $3
			`, d.ProjectID, models.ProjectStatusInProgress, models.ProjectStatusCompleted)
			if err != nil {
				return fmt.Errorf("reopen project: %w", err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return ErrStatusNotEligible
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepository) ListLogs(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeLog, error) {
	var logs []models.DisputeLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM dispute_logs WHERE dispute_id = $1 ORDER BY created_at ASC
	`, disputeID)
	return logs, err
}
