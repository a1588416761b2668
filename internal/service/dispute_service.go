package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/repository"
	"github.com/vkaravaev/workhub-backend/internal/validation"
)

// DisputeStore описывает зависимости сервиса споров от хранилища.
type DisputeStore interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Dispute, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
	HasPending(ctx context.Context, projectID uuid.UUID) (bool, error)
	Resolve(ctx context.Context, disputeID, adminID uuid.UUID, status, note string, reopenProject bool) (*models.Dispute, error)
	ListLogs(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeLog, error)
}

// DisputeProjectStore возвращает проект спора.
type DisputeProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// DisputeService управляет открытием споров и решениями администратора.
type DisputeService struct {
	disputes DisputeStore
	projects DisputeProjectStore
	notifier Notifier
}

func NewDisputeService(disputes DisputeStore, projects DisputeProjectStore, notifier Notifier) *DisputeService {
	return &DisputeService{
		disputes: disputes,
		projects: projects,
		notifier: notifier,
	}
}

// OpenDisputeInput содержит данные открываемого спора.
type OpenDisputeInput struct {
	ProjectID      uuid.UUID
	ClientID       uuid.UUID
	Reason         string
	PolicyAccepted bool
}

// OpenDispute открывает спор по завершённому проекту. Требуется причина и
// явное согласие с политикой споров; одновременно допустим только один
// незавершённый спор, всего по проекту — не более пяти за всё время.
func (s *DisputeService) OpenDispute(ctx context.Context, in OpenDisputeInput) (*models.Dispute, error) {
	if err := validation.ValidateNonEmpty("причина спора", in.Reason); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("причина спора", in.Reason, 0, validation.MaxReasonLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if !in.PolicyAccepted {
		return nil, apperror.New(apperror.ErrCodeValidation, "необходимо принять политику рассмотрения споров")
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.ClientID != in.ClientID {
		return nil, apperror.ErrForbidden
	}
	if project.Status != models.ProjectStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeConflict, "спор можно открыть только по завершённому проекту")
	}

	pending, err := s.disputes.HasPending(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperror.New(apperror.ErrCodeConflict, "по проекту уже есть нерассмотренный спор")
	}

	total, err := s.disputes.CountByProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if total >= models.DisputeMaxPerProject {
		return nil, apperror.New(apperror.ErrCodeConflict, "исчерпан лимит споров по проекту")
	}

	d := &models.Dispute{
		ProjectID:      in.ProjectID,
		ClientID:       in.ClientID,
		Reason:         in.Reason,
		PolicyAccepted: in.PolicyAccepted,
		Status:         models.DisputeStatusPending,
	}
	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, err
	}

	notifyAsync(s.notifier, project.FreelancerID, "dispute.opened", d)

	return d, nil
}

// AcceptDispute принимает спор: статус становится resuelta, проект
// возвращается в работу.
func (s *DisputeService) AcceptDispute(ctx context.Context, disputeID, adminID uuid.UUID, note string) (*models.Dispute, error) {
	return s.resolve(ctx, disputeID, adminID, models.DisputeStatusResolved, note, true)
}

// RejectDispute отклоняет спор: статус становится irresoluble, проект
// остаётся завершённым.
func (s *DisputeService) RejectDispute(ctx context.Context, disputeID, adminID uuid.UUID, note string) (*models.Dispute, error) {
	return s.resolve(ctx, disputeID, adminID, models.DisputeStatusUnresolvable, note, false)
}

func (s *DisputeService) resolve(ctx context.Context, disputeID, adminID uuid.UUID, status, note string, reopen bool) (*models.Dispute, error) {
	existing, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, apperror.ErrDisputeNotFound
	}
	if existing.Status != models.DisputeStatusPending {
		return nil, apperror.New(apperror.ErrCodeConflict, "спор уже рассмотрен")
	}

	resolved, err := s.disputes.Resolve(ctx, disputeID, adminID, status, note, reopen)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.New(apperror.ErrCodeConflict, "спор уже рассмотрен")
		}
		if errors.Is(err, repository.ErrStatusNotEligible) {
			return nil, apperror.New(apperror.ErrCodeConflict, "проект спора уже не завершён")
		}
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, resolved.ProjectID)
	if err == nil {
		event := "dispute.rejected"
		if status == models.DisputeStatusResolved {
			event = "dispute.accepted"
		}
		notifyAsync(s.notifier, project.ClientID, event, resolved)
		notifyAsync(s.notifier, project.FreelancerID, event, resolved)
	}

	return resolved, nil
}

// ListProjectDisputes возвращает споры проекта его участнику.
func (s *DisputeService) ListProjectDisputes(ctx context.Context, projectID, userID uuid.UUID) ([]models.Dispute, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return s.disputes.ListByProject(ctx, projectID)
}

// DisputeLogs возвращает журнал спора участнику проекта.
func (s *DisputeService) DisputeLogs(ctx context.Context, disputeID, userID uuid.UUID) ([]models.DisputeLog, error) {
	d, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, apperror.ErrDisputeNotFound
	}

	project, err := s.projects.GetByID(ctx, d.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	return s.disputes.ListLogs(ctx, disputeID)
}
