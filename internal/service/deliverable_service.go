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

// DeliverableStore описывает зависимости сервиса результатов работы.
type DeliverableStore interface {
	Create(ctx context.Context, d *models.Deliverable) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deliverable, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Deliverable, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Deliverable, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Deliverable, error)
	Resubmit(ctx context.Context, id uuid.UUID, filePath, fileName string, fileSize int64, mimeType string) (*models.Deliverable, error)
}

// DeliverableProjectStore возвращает проект результата работы.
type DeliverableProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// DeliverableService управляет сдачей и приёмкой результатов работы.
type DeliverableService struct {
	deliverables DeliverableStore
	projects     DeliverableProjectStore
	notifier     Notifier
}

func NewDeliverableService(deliverables DeliverableStore, projects DeliverableProjectStore, notifier Notifier) *DeliverableService {
	return &DeliverableService{
		deliverables: deliverables,
		projects:     projects,
		notifier:     notifier,
	}
}

// UploadInput содержит данные загружаемого файла.
type UploadInput struct {
	ProjectID    uuid.UUID
	FreelancerID uuid.UUID
	Title        string
	FilePath     string
	FileName     string
	FileSize     int64
	MimeType     string
}

// Upload сдаёт результат работы. Разрешено только назначенному фрилансеру
// и только по проекту в работе.
func (s *DeliverableService) Upload(ctx context.Context, in UploadInput) (*models.Deliverable, error) {
	if err := validation.ValidateNonEmpty("название результата", in.Title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.FreelancerID != in.FreelancerID {
		return nil, apperror.ErrForbidden
	}
	if project.Status != models.ProjectStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeConflict, "сдавать результаты можно только по проекту в работе")
	}

	d := &models.Deliverable{
		ProjectID:    in.ProjectID,
		FreelancerID: in.FreelancerID,
		Title:        in.Title,
		FilePath:     in.FilePath,
		FileName:     in.FileName,
		FileSize:     in.FileSize,
		MimeType:     in.MimeType,
	}
	if err := s.deliverables.Create(ctx, d); err != nil {
		return nil, err
	}

	notifyAsync(s.notifier, project.ClientID, "deliverable.submitted", d)

	return d, nil
}

// Resubmit заменяет файл результата: версия увеличивается, отклонение
// снимается. Допускается для любого неодобренного результата, в том числе
// ещё не рассмотренного клиентом.
func (s *DeliverableService) Resubmit(ctx context.Context, deliverableID, freelancerID uuid.UUID, filePath, fileName string, fileSize int64, mimeType string) (*models.Deliverable, error) {
	d, err := s.deliverables.GetByID(ctx, deliverableID)
	if err != nil {
		return nil, apperror.ErrDeliverableNotFound
	}
	if d.FreelancerID != freelancerID {
		return nil, apperror.ErrForbidden
	}
	if d.ApprovedByClient {
		return nil, apperror.New(apperror.ErrCodeConflict, "одобренный результат нельзя пересдать")
	}

	updated, err := s.deliverables.Resubmit(ctx, deliverableID, filePath, fileName, fileSize, mimeType)
	if err != nil {
		if errors.Is(err, repository.ErrDeliverableDecided) {
			return nil, apperror.New(apperror.ErrCodeConflict, "одобренный результат нельзя пересдать")
		}
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, d.ProjectID)
	if err == nil {
		notifyAsync(s.notifier, project.ClientID, "deliverable.resubmitted", updated)
	}

	return updated, nil
}

// Approve одобряет результат от имени клиента проекта.
func (s *DeliverableService) Approve(ctx context.Context, deliverableID, clientID uuid.UUID) (*models.Deliverable, error) {
	d, project, err := s.clientDeliverable(ctx, deliverableID, clientID)
	if err != nil {
		return nil, err
	}

	updated, err := s.deliverables.Approve(ctx, d.ID)
	if err != nil {
		if errors.Is(err, repository.ErrDeliverableDecided) {
			return nil, apperror.New(apperror.ErrCodeConflict, "результат уже рассмотрен")
		}
		return nil, err
	}

	notifyAsync(s.notifier, project.FreelancerID, "deliverable.approved", updated)

	return updated, nil
}

// Reject отклоняет результат; причина обязательна.
func (s *DeliverableService) Reject(ctx context.Context, deliverableID, clientID uuid.UUID, reason string) (*models.Deliverable, error) {
	if err := validation.ValidateNonEmpty("причина отклонения", reason); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("причина отклонения", reason, 0, validation.MaxReasonLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	d, project, err := s.clientDeliverable(ctx, deliverableID, clientID)
	if err != nil {
		return nil, err
	}

	updated, err := s.deliverables.Reject(ctx, d.ID, reason)
	if err != nil {
		if errors.Is(err, repository.ErrDeliverableDecided) {
			return nil, apperror.New(apperror.ErrCodeConflict, "результат уже рассмотрен")
		}
		return nil, err
	}

	notifyAsync(s.notifier, project.FreelancerID, "deliverable.rejected", updated)

	return updated, nil
}

// GetDeliverable возвращает результат работы участнику проекта.
func (s *DeliverableService) GetDeliverable(ctx context.Context, deliverableID, userID uuid.UUID) (*models.Deliverable, error) {
	d, err := s.deliverables.GetByID(ctx, deliverableID)
	if err != nil {
		return nil, apperror.ErrDeliverableNotFound
	}

	project, err := s.projects.GetByID(ctx, d.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	return d, nil
}

// ListProjectDeliverables возвращает результаты участнику проекта.
func (s *DeliverableService) ListProjectDeliverables(ctx context.Context, projectID, userID uuid.UUID) ([]models.Deliverable, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return s.deliverables.ListByProject(ctx, projectID)
}

// clientDeliverable загружает результат и его проект, проверяя, что
// решение принимает клиент проекта.
func (s *DeliverableService) clientDeliverable(ctx context.Context, deliverableID, clientID uuid.UUID) (*models.Deliverable, *models.Project, error) {
	d, err := s.deliverables.GetByID(ctx, deliverableID)
	if err != nil {
		return nil, nil, apperror.ErrDeliverableNotFound
	}

	project, err := s.projects.GetByID(ctx, d.ProjectID)
	if err != nil {
		return nil, nil, apperror.ErrProjectNotFound
	}
	if project.ClientID != clientID {
		return nil, nil, apperror.ErrForbidden
	}

	return d, project, nil
}
