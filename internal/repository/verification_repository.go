package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkaravaev/workhub-backend/internal/models"
)

var ErrVerificationCodeNotFound = errors.New("verification code not found")

type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) CreateCode(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	err := r.db.GetContext(ctx, &vc, `
		INSERT INTO verification_codes (user_id, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, userID, code, expiresAt)
	return &vc, err
}

// ConsumeCode проверяет код и помечает его использованным.
// Возвращает false без ошибки, если подходящего кода нет.
func (r *VerificationRepository) ConsumeCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	var vc models.VerificationCode
	err := r.db.GetContext(ctx, &vc, `
		SELECT * FROM verification_codes
		WHERE user_id = $1 AND code = $2 AND used = false AND expires_at > NOW()
		ORDER BY created_at DESC LIMIT 1
	`, userID, code)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE verification_codes SET used = true WHERE id = $1`, vc.ID); err != nil {
		return false, err
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE users SET email_verified = true, updated_at = NOW() WHERE id = $1`, userID); err != nil {
		return false, err
	}

	return true, nil
}

// PurgeExpiredSignups удаляет просроченные неиспользованные коды и учётные
// записи, так и не подтвердившие email за отведённый срок.
func (r *VerificationRepository) PurgeExpiredSignups(ctx context.Context, unverifiedOlderThan time.Duration) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE used = false AND expires_at < NOW()`); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE email_verified = false
		  AND created_at < NOW() - make_interval(secs => $1)
		  AND NOT EXISTS (SELECT 1 FROM projects p WHERE p.client_id = users.id OR p.freelancer_id = users.id)
	`, unverifiedOlderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
