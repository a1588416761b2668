package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/lifecycle"
	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/repository"
	"github.com/vkaravaev/workhub-backend/internal/validation"
)

// ScopeStore описывает зависимости сервиса версий условий.
type ScopeStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	CreateScopeVersion(ctx context.Context, scope *models.ProjectScope) (*models.ProjectScope, error)
	GetCurrentScope(ctx context.Context, projectID uuid.UUID) (*models.ProjectScope, error)
	ListScopes(ctx context.Context, projectID uuid.UUID) ([]models.ProjectScope, error)
}

// ScopeService управляет версиями условий проекта.
type ScopeService struct {
	store    ScopeStore
	notifier Notifier
}

func NewScopeService(store ScopeStore, notifier Notifier) *ScopeService {
	return &ScopeService{store: store, notifier: notifier}
}

// SubmitScopeInput содержит данные новой версии условий.
type SubmitScopeInput struct {
	ProjectID     uuid.UUID
	AuthorID      uuid.UUID
	Title         string
	Description   string
	Deliverables  string
	Exclusions    string
	RevisionLimit *int
	Deadline      *time.Time
	Price         *float64
}

// SubmitScope создаёт новую версию условий от имени участника проекта.
// Версия нумеруется как max+1, флаги принятия обеих сторон сбрасываются,
// цена и срок договора перезаписываются при наличии новых значений.
func (s *ScopeService) SubmitScope(ctx context.Context, in SubmitScopeInput) (*models.ProjectScope, error) {
	if err := validation.ValidateLength("заголовок условий", in.Title, validation.MinTitleLength, validation.MaxTitleLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание условий", in.Description, 0, validation.MaxScopeTextLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice("цена", in.Price); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.RevisionLimit != nil && *in.RevisionLimit < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "лимит правок не может быть отрицательным")
	}

	project, err := s.store.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(in.AuthorID) {
		return nil, apperror.ErrForbidden
	}
	if !lifecycle.CanTransition(project.Status, lifecycle.ActionSubmitScope) {
		return nil, apperror.New(apperror.ErrCodeConflict, "в текущем статусе проекта нельзя менять условия")
	}

	scope := &models.ProjectScope{
		ProjectID:     in.ProjectID,
		AuthorID:      in.AuthorID,
		Title:         in.Title,
		Description:   in.Description,
		Deliverables:  in.Deliverables,
		Exclusions:    in.Exclusions,
		RevisionLimit: in.RevisionLimit,
		Deadline:      in.Deadline,
		Price:         in.Price,
	}

	created, err := s.store.CreateScopeVersion(ctx, scope)
	if err != nil {
		if err == repository.ErrScopeVersionConflict {
			return nil, apperror.New(apperror.ErrCodeConflict, "условия были изменены параллельно, повторите попытку")
		}
		return nil, err
	}

	counterparty := project.FreelancerID
	if in.AuthorID == project.FreelancerID {
		counterparty = project.ClientID
	}
	notifyAsync(s.notifier, counterparty, "scope.submitted", created)

	return created, nil
}

// CurrentScope возвращает действующую версию условий участнику проекта.
func (s *ScopeService) CurrentScope(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectScope, error) {
	project, err := s.store.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	scope, err := s.store.GetCurrentScope(ctx, projectID)
	if err != nil {
		if err == repository.ErrScopeNotFound {
			return nil, apperror.New(apperror.ErrCodeNotFound, "у проекта нет версий условий")
		}
		return nil, err
	}
	return scope, nil
}

// ScopeHistory возвращает все версии условий участнику проекта.
func (s *ScopeService) ScopeHistory(ctx context.Context, projectID, userID uuid.UUID) ([]models.ProjectScope, error) {
	project, err := s.store.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	return s.store.ListScopes(ctx, projectID)
}
