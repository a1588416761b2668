package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkaravaev/workhub-backend/internal/models"
)

var (
	ErrDeliverableNotFound = errors.New("deliverable not found")
	ErrDeliverableDecided  = errors.New("deliverable already decided")
)

type DeliverableRepository struct {
	db *sqlx.DB
}

func NewDeliverableRepository(db *sqlx.DB) *DeliverableRepository {
	return &DeliverableRepository{db: db}
}

func (r *DeliverableRepository) Create(ctx context.Context, d *models.Deliverable) error {
	query := `
		INSERT INTO deliverables (project_id, freelancer_id, title, file_path, file_name, file_size, mime_type, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		RETURNING id, version, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		d.ProjectID, d.FreelancerID, d.Title, d.FilePath, d.FileName, d.FileSize, d.MimeType).
		Scan(&d.ID, &d.Version, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DeliverableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Deliverable, error) {
	var d models.Deliverable
	err := r.db.GetContext(ctx, &d, `SELECT * FROM deliverables WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliverableNotFound
	}
	return &d, err
}

func (r *DeliverableRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Deliverable, error) {
	var deliverables []models.Deliverable
	err := r.db.SelectContext(ctx, &deliverables, `
		SELECT * FROM deliverables WHERE project_id = $1 ORDER BY created_at ASC
	`, projectID)
	return deliverables, err
}

// Approve одобряет результат. Одобрение отклонённого или уже одобренного
// результата даёт ноль строк и ErrDeliverableDecided.
func (r *DeliverableRepository) Approve(ctx context.Context, id uuid.UUID) (*models.Deliverable, error) {
	var d models.Deliverable
	err := r.db.GetContext(ctx, &d, `
		UPDATE deliverables SET approved_by_client = true, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND approved_by_client = false AND rejected = false
		RETURNING *
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliverableDecided
	}
	return &d, err
}

// Reject отклоняет результат с обязательной причиной.
func (r *DeliverableRepository) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Deliverable, error) {
	var d models.Deliverable
	err := r.db.GetContext(ctx, &d, `
		UPDATE deliverables SET rejected = true, rejection_reason = $2, updated_at = NOW()
		WHERE id = $1 AND approved_by_client = false AND rejected = false
		RETURNING *
	`, id, reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliverableDecided
	}
	return &d, err
}

// Resubmit заменяет файл результата: версия увеличивается, отклонение
// снимается. Условие намеренно шире, чем rejected = true: фрилансер может
// заменить и ещё не рассмотренный файл, закрыт только одобренный.
func (r *DeliverableRepository) Resubmit(ctx context.Context, id uuid.UUID, filePath, fileName string, fileSize int64, mimeType string) (*models.Deliverable, error) {
	var d models.Deliverable
	err := r.db.GetContext(ctx, &d, `
		UPDATE deliverables SET
			file_path = $2, file_name = $3, file_size = $4, mime_type = $5,
			version = version + 1,
			rejected = false, rejection_reason = NULL,
			updated_at = NOW()
		WHERE id = $1 AND approved_by_client = false
		RETURNING *
	`, id, filePath, fileName, fileSize, mimeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliverableDecided
	}
	return &d, err
}

// CountByProject возвращает общее число результатов и число неодобренных.
func (r *DeliverableRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (total, unapproved int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE approved_by_client = false)
		FROM deliverables WHERE project_id = $1
	`, projectID).Scan(&total, &unapproved)
	return total, unapproved, err
}
