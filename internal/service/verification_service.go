package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/goroutine"
	"github.com/vkaravaev/workhub-backend/internal/logger"
	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
)

// VerificationStore описывает хранилище кодов подтверждения.
type VerificationStore interface {
	CreateCode(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) (*models.VerificationCode, error)
	ConsumeCode(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	PurgeExpiredSignups(ctx context.Context, unverifiedOlderThan time.Duration) (int64, error)
}

const (
	emailCodeTTL = 15 * time.Minute

	// unverifiedSignupTTL — срок, за который новый пользователь обязан
	// подтвердить email, иначе учётная запись удаляется фоновой очисткой.
	unverifiedSignupTTL = 48 * time.Hour
)

// VerificationService управляет кодами подтверждения email и фоновой
// очисткой неподтверждённых регистраций.
type VerificationService struct {
	repo       VerificationStore
	sweepEvery time.Duration
}

func NewVerificationService(repo VerificationStore, sweepEvery time.Duration) *VerificationService {
	if sweepEvery <= 0 {
		sweepEvery = time.Hour
	}
	return &VerificationService{repo: repo, sweepEvery: sweepEvery}
}

// IssueEmailCode выпускает шестизначный код подтверждения email.
// Код возвращается вызывающему; доставка почтой подключается отдельно.
func (s *VerificationService) IssueEmailCode(ctx context.Context, userID uuid.UUID) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("генерация кода подтверждения: %w", err)
	}
	if _, err := s.repo.CreateCode(ctx, userID, code, time.Now().Add(emailCodeTTL)); err != nil {
		return "", err
	}
	return code, nil
}

// ConfirmEmail проверяет код и помечает email подтверждённым.
func (s *VerificationService) ConfirmEmail(ctx context.Context, userID uuid.UUID, code string) error {
	ok, err := s.repo.ConsumeCode(ctx, userID, code)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.New(apperror.ErrCodeValidation, "код подтверждения неверен или истёк")
	}
	return nil
}

// StartSweeper запускает периодическую очистку просроченных кодов и
// неподтверждённых учётных записей. Останавливается по отмене контекста.
func (s *VerificationService) StartSweeper(ctx context.Context) {
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(s.sweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.repo.PurgeExpiredSignups(ctx, unverifiedSignupTTL)
				if err != nil {
					if logger.Log != nil {
						logger.Log.Warnf("очистка неподтверждённых регистраций: %v", err)
					}
					continue
				}
				if removed > 0 && logger.Log != nil {
					logger.Log.WithField("removed", removed).
						Info("удалены неподтверждённые учётные записи")
				}
			}
		}
	})
}

// generateCode возвращает равномерно распределённый шестизначный код.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
