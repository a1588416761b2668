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

type mockDisputeStore struct {
	mock.Mock
}

func (m *mockDisputeStore) Create(ctx context.Context, d *models.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockDisputeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Dispute, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

func (m *mockDisputeStore) HasPending(ctx context.Context, projectID uuid.UUID) (bool, error) {
	args := m.Called(ctx, projectID)
	return args.Bool(0), args.Error(1)
}

func (m *mockDisputeStore) Resolve(ctx context.Context, disputeID, adminID uuid.UUID, status, note string, reopenProject bool) (*models.Dispute, error) {
	args := m.Called(ctx, disputeID, adminID, status, note, reopenProject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) ListLogs(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeLog, error) {
	args := m.Called(ctx, disputeID)
	return args.Get(0).([]models.DisputeLog), args.Error(1)
}

type mockDisputeProjects struct {
	mock.Mock
}

func (m *mockDisputeProjects) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func completedProject(clientID uuid.UUID) *models.Project {
	return &models.Project{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.ProjectStatusCompleted,
	}
}

func TestDisputeService_OpenDispute_Success(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := completedProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	disputes.On("HasPending", ctx, project.ID).Return(false, nil)
	disputes.On("CountByProject", ctx, project.ID).Return(2, nil)
	disputes.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)

	d, err := svc.OpenDispute(ctx, OpenDisputeInput{
		ProjectID:      project.ID,
		ClientID:       clientID,
		Reason:         "результат не соответствует условиям",
		PolicyAccepted: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusPending, d.Status)
	disputes.AssertExpectations(t)
}

func TestDisputeService_OpenDispute_LifetimeCapReached(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := completedProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	disputes.On("HasPending", ctx, project.ID).Return(false, nil)
	disputes.On("CountByProject", ctx, project.ID).Return(models.DisputeMaxPerProject, nil)

	_, err := svc.OpenDispute(ctx, OpenDisputeInput{
		ProjectID:      project.ID,
		ClientID:       clientID,
		Reason:         "шестой спор по проекту",
		PolicyAccepted: true,
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "лимит споров")
	disputes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDisputeService_OpenDispute_PendingExists(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := completedProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	disputes.On("HasPending", ctx, project.ID).Return(true, nil)

	_, err := svc.OpenDispute(ctx, OpenDisputeInput{
		ProjectID:      project.ID,
		ClientID:       clientID,
		Reason:         "повторный спор при открытом",
		PolicyAccepted: true,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нерассмотренный спор")
}

func TestDisputeService_OpenDispute_ProjectNotCompleted(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	clientID := uuid.New()
	project := completedProject(clientID)
	project.Status = models.ProjectStatusInProgress

	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.OpenDispute(ctx, OpenDisputeInput{
		ProjectID:      project.ID,
		ClientID:       clientID,
		Reason:         "спор по незавершённому проекту",
		PolicyAccepted: true,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "завершённому проекту")
}

func TestDisputeService_OpenDispute_PolicyNotAccepted(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	_, err := svc.OpenDispute(ctx, OpenDisputeInput{
		ProjectID:      uuid.New(),
		ClientID:       uuid.New(),
		Reason:         "причина есть, согласия нет",
		PolicyAccepted: false,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "политику")
}

func TestDisputeService_OpenDispute_NotClient(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	project := completedProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.OpenDispute(ctx, OpenDisputeInput{
		ProjectID:      project.ID,
		ClientID:       project.FreelancerID,
		Reason:         "спор от фрилансера",
		PolicyAccepted: true,
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestDisputeService_AcceptDispute_ReopensProject(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	adminID := uuid.New()
	project := completedProject(uuid.New())
	disputeID := uuid.New()

	pending := &models.Dispute{ID: disputeID, ProjectID: project.ID, Status: models.DisputeStatusPending}
	resolved := &models.Dispute{ID: disputeID, ProjectID: project.ID, Status: models.DisputeStatusResolved, ResolvedBy: &adminID}

	disputes.On("GetByID", ctx, disputeID).Return(pending, nil)
	disputes.On("Resolve", ctx, disputeID, adminID, models.DisputeStatusResolved, "вернуть в работу", true).Return(resolved, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	d, err := svc.AcceptDispute(ctx, disputeID, adminID, "вернуть в работу")
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, d.Status)
	disputes.AssertExpectations(t)
}

func TestDisputeService_RejectDispute_KeepsProjectCompleted(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	adminID := uuid.New()
	project := completedProject(uuid.New())
	disputeID := uuid.New()

	pending := &models.Dispute{ID: disputeID, ProjectID: project.ID, Status: models.DisputeStatusPending}
	resolved := &models.Dispute{ID: disputeID, ProjectID: project.ID, Status: models.DisputeStatusUnresolvable, ResolvedBy: &adminID}

	disputes.On("GetByID", ctx, disputeID).Return(pending, nil)
	disputes.On("Resolve", ctx, disputeID, adminID, models.DisputeStatusUnresolvable, "", false).Return(resolved, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	d, err := svc.RejectDispute(ctx, disputeID, adminID, "")
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusUnresolvable, d.Status)
}

func TestDisputeService_Resolve_AlreadyDecided(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	disputeID := uuid.New()
	decided := &models.Dispute{ID: disputeID, ProjectID: uuid.New(), Status: models.DisputeStatusResolved}

	disputes.On("GetByID", ctx, disputeID).Return(decided, nil)

	_, err := svc.AcceptDispute(ctx, disputeID, uuid.New(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже рассмотрен")
	disputes.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_Resolve_RaceLostInRepo(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	adminID := uuid.New()
	disputeID := uuid.New()
	pending := &models.Dispute{ID: disputeID, ProjectID: uuid.New(), Status: models.DisputeStatusPending}

	disputes.On("GetByID", ctx, disputeID).Return(pending, nil)
	disputes.On("Resolve", ctx, disputeID, adminID, models.DisputeStatusResolved, "", true).Return(nil, repository.ErrDisputeNotFound)

	_, err := svc.AcceptDispute(ctx, disputeID, adminID, "")
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestDisputeService_ListProjectDisputes_NotParticipant(t *testing.T) {
	disputes := new(mockDisputeStore)
	projects := new(mockDisputeProjects)
	svc := NewDisputeService(disputes, projects, nil)
	ctx := context.Background()

	project := completedProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.ListProjectDisputes(ctx, project.ID, uuid.New())
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}
