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

type mockProjectStore struct {
	mock.Mock
}

func (m *mockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Project, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectStore) SetPartyAccepted(ctx context.Context, projectID uuid.UUID, isClient bool, eligibleStatuses []string) (*models.Project, error) {
	args := m.Called(ctx, projectID, isClient, eligibleStatuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectStore) Complete(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

type mockServiceCounter struct {
	mock.Mock
}

func (m *mockServiceCounter) IncrementCompletedOrders(ctx context.Context, serviceID uuid.UUID) error {
	args := m.Called(ctx, serviceID)
	return args.Error(0)
}

type mockDeliverableCounter struct {
	mock.Mock
}

func (m *mockDeliverableCounter) CountByProject(ctx context.Context, projectID uuid.UUID) (int, int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func TestProjectService_AcceptContract_Client(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusAwaitingContract,
	}

	updated := *project
	updated.ClientAccepted = true

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	projects.On("SetPartyAccepted", ctx, project.ID, true, mock.Anything).Return(&updated, nil)

	res, err := svc.AcceptContract(ctx, project.ID, clientID)
	assert.NoError(t, err)
	assert.True(t, res.ClientAccepted)
	assert.False(t, res.FreelancerAccepted)
	projects.AssertExpectations(t)
}

func TestProjectService_AcceptContract_Freelancer(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		FreelancerID: freelancerID,
		Status:       models.ProjectStatusPendingContract,
	}

	updated := *project
	updated.FreelancerAccepted = true

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	projects.On("SetPartyAccepted", ctx, project.ID, false, mock.Anything).Return(&updated, nil)

	res, err := svc.AcceptContract(ctx, project.ID, freelancerID)
	assert.NoError(t, err)
	assert.True(t, res.FreelancerAccepted)
}

func TestProjectService_AcceptContract_WrongStatus(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusInProgress,
	}
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.AcceptContract(ctx, project.ID, clientID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProjectService_AcceptContract_RaceLostInRepo(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusAwaitingContract,
	}

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	projects.On("SetPartyAccepted", ctx, project.ID, true, mock.Anything).Return(nil, repository.ErrStatusNotEligible)

	_, err := svc.AcceptContract(ctx, project.ID, clientID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProjectService_ApproveProject_Success(t *testing.T) {
	projects := new(mockProjectStore)
	requests := new(mockRequestStore)
	counter := new(mockServiceCounter)
	deliverables := new(mockDeliverableCounter)
	svc := NewProjectService(projects, requests, counter, deliverables, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		RequestID:    uuid.New(),
		Status:       models.ProjectStatusInProgress,
	}

	completed := *project
	completed.Status = models.ProjectStatusCompleted

	serviceID := uuid.New()
	req := &models.ServiceRequest{ID: project.RequestID, ServiceID: &serviceID}

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	deliverables.On("CountByProject", ctx, project.ID).Return(3, 0, nil)
	projects.On("Complete", ctx, project.ID).Return(&completed, nil)
	requests.On("GetRequestByID", ctx, project.RequestID).Return(req, nil)
	counter.On("IncrementCompletedOrders", ctx, serviceID).Return(nil)

	res, err := svc.ApproveProject(ctx, project.ID, clientID)
	assert.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCompleted, res.Status)
	counter.AssertExpectations(t)
}

func TestProjectService_ApproveProject_NoDeliverables(t *testing.T) {
	projects := new(mockProjectStore)
	deliverables := new(mockDeliverableCounter)
	svc := NewProjectService(projects, nil, nil, deliverables, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusInProgress,
	}

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	deliverables.On("CountByProject", ctx, project.ID).Return(0, 0, nil)

	_, err := svc.ApproveProject(ctx, project.ID, clientID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "без сданных результатов")
}

func TestProjectService_ApproveProject_UnapprovedDeliverables(t *testing.T) {
	projects := new(mockProjectStore)
	deliverables := new(mockDeliverableCounter)
	svc := NewProjectService(projects, nil, nil, deliverables, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusInProgress,
	}

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	deliverables.On("CountByProject", ctx, project.ID).Return(3, 1, nil)

	_, err := svc.ApproveProject(ctx, project.ID, clientID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неодобренные результаты")
}

func TestProjectService_ApproveProject_NotClient(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		FreelancerID: freelancerID,
		Status:       models.ProjectStatusInProgress,
	}
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.ApproveProject(ctx, project.ID, freelancerID)
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjectService_ApproveProject_WrongStatus(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusAwaitingPayment,
	}
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.ApproveProject(ctx, project.ID, clientID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProjectService_GetProject_NotParticipant(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()

	project := &models.Project{ID: uuid.New(), ClientID: uuid.New(), FreelancerID: uuid.New()}
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.GetProject(ctx, project.ID, uuid.New())
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProjectService_ListMyProjects_DefaultLimit(t *testing.T) {
	projects := new(mockProjectStore)
	svc := NewProjectService(projects, nil, nil, nil, nil)
	ctx := context.Background()
	userID := uuid.New()

	projects.On("ListByUser", ctx, userID, 20, 0).Return([]models.Project{}, nil)

	_, err := svc.ListMyProjects(ctx, userID, 500, 0)
	assert.NoError(t, err)
	projects.AssertExpectations(t)
}
