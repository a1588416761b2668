package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/lifecycle"
	"github.com/vkaravaev/workhub-backend/internal/logger"
	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/repository"
)

// ProjectStore описывает зависимости сервиса проектов.
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Project, error)
	SetPartyAccepted(ctx context.Context, projectID uuid.UUID, isClient bool, eligibleStatuses []string) (*models.Project, error)
	Complete(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
}

// RequestReader возвращает заявку-источник проекта.
type RequestReader interface {
	GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
}

// ServiceCounter увеличивает счётчик выполненных заказов услуги.
type ServiceCounter interface {
	IncrementCompletedOrders(ctx context.Context, serviceID uuid.UUID) error
}

// DeliverableCounter возвращает счётчики результатов работы проекта.
type DeliverableCounter interface {
	CountByProject(ctx context.Context, projectID uuid.UUID) (total, unapproved int, err error)
}

// ProjectService отвечает за ворота договора и завершение проекта.
type ProjectService struct {
	projects     ProjectStore
	requests     RequestReader
	services     ServiceCounter
	deliverables DeliverableCounter
	notifier     Notifier
}

func NewProjectService(projects ProjectStore, requests RequestReader, services ServiceCounter, deliverables DeliverableCounter, notifier Notifier) *ProjectService {
	return &ProjectService{
		projects:     projects,
		requests:     requests,
		services:     services,
		deliverables: deliverables,
		notifier:     notifier,
	}
}

// contractEligibleStatuses — статусы, в которых стороны могут принимать
// договор; awaiting_payment сюда не входит: там условия уже зафиксированы.
var contractEligibleStatuses = []string{
	models.ProjectStatusPendingContract,
	models.ProjectStatusAwaitingContract,
}

// GetProject возвращает проект его участнику.
func (s *ProjectService) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return project, nil
}

// ListMyProjects возвращает проекты пользователя.
func (s *ProjectService) ListMyProjects(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.projects.ListByUser(ctx, userID, limit, offset)
}

// AcceptContract выставляет флаг принятия текущих условий для стороны.
// Флаг односторонний и снимается только новой версией условий.
func (s *ProjectService) AcceptContract(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	if !lifecycle.CanTransition(project.Status, lifecycle.ActionAcceptContract) {
		return nil, apperror.New(apperror.ErrCodeConflict, "договор нельзя принять в текущем статусе проекта")
	}

	isClient := userID == project.ClientID
	updated, err := s.projects.SetPartyAccepted(ctx, projectID, isClient, contractEligibleStatuses)
	if err != nil {
		if errors.Is(err, repository.ErrStatusNotEligible) {
			return nil, apperror.New(apperror.ErrCodeConflict, "договор нельзя принять в текущем статусе проекта")
		}
		return nil, err
	}

	counterparty := project.FreelancerID
	if !isClient {
		counterparty = project.ClientID
	}
	notifyAsync(s.notifier, counterparty, "contract.accepted", updated)

	return updated, nil
}

// ApproveProject завершает проект по решению клиента. Завершение возможно
// только когда каждый результат работы одобрен; счётчик выполненных заказов
// услуги-источника обновляется best-effort после фиксации.
func (s *ProjectService) ApproveProject(ctx context.Context, projectID, clientID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	if !lifecycle.CanTransition(project.Status, lifecycle.ActionComplete) {
		return nil, apperror.New(apperror.ErrCodeConflict, "проект нельзя завершить в текущем статусе")
	}

	total, unapproved, err := s.deliverables.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя завершить проект без сданных результатов работы")
	}
	if unapproved > 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "остались неодобренные результаты работы")
	}

	completed, err := s.projects.Complete(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusNotEligible) {
			return nil, apperror.New(apperror.ErrCodeConflict, "проект нельзя завершить в текущем статусе")
		}
		return nil, err
	}

	s.bumpServiceCounter(ctx, completed)

	notifyAsync(s.notifier, completed.FreelancerID, "project.completed", completed)

	return completed, nil
}

// bumpServiceCounter инкрементирует денормализованный счётчик услуги,
// если проект восходит к опубликованной услуге. Сбой не критичен.
func (s *ProjectService) bumpServiceCounter(ctx context.Context, project *models.Project) {
	req, err := s.requests.GetRequestByID(ctx, project.RequestID)
	if err != nil || req.ServiceID == nil {
		return
	}
	if err := s.services.IncrementCompletedOrders(ctx, *req.ServiceID); err != nil {
		if logger.Log != nil {
			logger.Log.WithField("project_id", project.ID).
				Warnf("не удалось обновить счётчик услуги: %v", err)
		}
	}
}
