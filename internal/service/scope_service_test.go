package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/repository"
)

type mockScopeStore struct {
	mock.Mock
}

func (m *mockScopeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockScopeStore) CreateScopeVersion(ctx context.Context, scope *models.ProjectScope) (*models.ProjectScope, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectScope), args.Error(1)
}

func (m *mockScopeStore) GetCurrentScope(ctx context.Context, projectID uuid.UUID) (*models.ProjectScope, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectScope), args.Error(1)
}

func (m *mockScopeStore) ListScopes(ctx context.Context, projectID uuid.UUID) ([]models.ProjectScope, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.ProjectScope), args.Error(1)
}

func TestScopeService_SubmitScope_Success(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	projectID := uuid.New()
	freelancerID := uuid.New()
	project := &models.Project{
		ID:           projectID,
		ClientID:     uuid.New(),
		FreelancerID: freelancerID,
		Status:       models.ProjectStatusAwaitingContract,
	}

	created := &models.ProjectScope{ProjectID: projectID, Version: 2, Title: "Новые условия"}
	store.On("GetByID", ctx, projectID).Return(project, nil)
	store.On("CreateScopeVersion", ctx, mock.AnythingOfType("*models.ProjectScope")).Return(created, nil)

	scope, err := svc.SubmitScope(ctx, SubmitScopeInput{
		ProjectID: projectID,
		AuthorID:  freelancerID,
		Title:     "Новые условия",
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, scope.Version)
	store.AssertExpectations(t)
}

func TestScopeService_SubmitScope_VersionConflict(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	projectID := uuid.New()
	clientID := uuid.New()
	project := &models.Project{
		ID:           projectID,
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusPendingContract,
	}

	store.On("GetByID", ctx, projectID).Return(project, nil)
	store.On("CreateScopeVersion", ctx, mock.AnythingOfType("*models.ProjectScope")).Return(nil, repository.ErrScopeVersionConflict)

	_, err := svc.SubmitScope(ctx, SubmitScopeInput{
		ProjectID: projectID,
		AuthorID:  clientID,
		Title:     "Параллельная правка",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "параллельно")
}

func TestScopeService_SubmitScope_NotParticipant(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	projectID := uuid.New()
	project := &models.Project{
		ID:           projectID,
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusPendingContract,
	}
	store.On("GetByID", ctx, projectID).Return(project, nil)

	_, err := svc.SubmitScope(ctx, SubmitScopeInput{
		ProjectID: projectID,
		AuthorID:  uuid.New(),
		Title:     "Чужой проект",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestScopeService_SubmitScope_CompletedProject(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	projectID := uuid.New()
	clientID := uuid.New()
	project := &models.Project{
		ID:           projectID,
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusCompleted,
	}
	store.On("GetByID", ctx, projectID).Return(project, nil)

	_, err := svc.SubmitScope(ctx, SubmitScopeInput{
		ProjectID: projectID,
		AuthorID:  clientID,
		Title:     "Поздняя правка",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestScopeService_SubmitScope_InvalidTitle(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	_, err := svc.SubmitScope(ctx, SubmitScopeInput{
		ProjectID: uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "ab",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestScopeService_SubmitScope_NegativeRevisionLimit(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	limit := -1
	_, err := svc.SubmitScope(ctx, SubmitScopeInput{
		ProjectID:     uuid.New(),
		AuthorID:      uuid.New(),
		Title:         "Условия с лимитом",
		RevisionLimit: &limit,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "лимит правок")
}

func TestScopeService_CurrentScope_NoVersions(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	projectID := uuid.New()
	clientID := uuid.New()
	project := &models.Project{ID: projectID, ClientID: clientID, FreelancerID: uuid.New()}

	store.On("GetByID", ctx, projectID).Return(project, nil)
	store.On("GetCurrentScope", ctx, projectID).Return(nil, repository.ErrScopeNotFound)

	_, err := svc.CurrentScope(ctx, projectID, clientID)
	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestScopeService_ScopeHistory_Success(t *testing.T) {
	store := new(mockScopeStore)
	svc := NewScopeService(store, nil)
	ctx := context.Background()

	projectID := uuid.New()
	clientID := uuid.New()
	project := &models.Project{ID: projectID, ClientID: clientID, FreelancerID: uuid.New()}

	history := []models.ProjectScope{{Version: 1}, {Version: 2}, {Version: 3}}
	store.On("GetByID", ctx, projectID).Return(project, nil)
	store.On("ListScopes", ctx, projectID).Return(history, nil)

	scopes, err := svc.ScopeHistory(ctx, projectID, clientID)
	assert.NoError(t, err)
	assert.Len(t, scopes, 3)
}
