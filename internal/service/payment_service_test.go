package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/payment/paypal"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/repository"
)

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CreateOrder(ctx context.Context, referenceID, currency string, value float64) (*paypal.Order, error) {
	args := m.Called(ctx, referenceID, currency, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.Order), args.Error(1)
}

func (m *mockPaymentGateway) CaptureOrder(ctx context.Context, orderID string) (*paypal.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.Order), args.Error(1)
}

type mockPaymentProjectStore struct {
	mock.Mock
}

func (m *mockPaymentProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockPaymentProjectStore) CapturePayment(ctx context.Context, projectID uuid.UUID, eligibleStatuses []string) (*models.Project, error) {
	args := m.Called(ctx, projectID, eligibleStatuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

type mockPaymentCatalog struct {
	mock.Mock
}

func (m *mockPaymentCatalog) GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockPaymentCatalog) GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func acceptedProject(clientID uuid.UUID) *models.Project {
	return &models.Project{
		ID:                 uuid.New(),
		ClientID:           clientID,
		FreelancerID:       uuid.New(),
		RequestID:          uuid.New(),
		ProposalID:         uuid.New(),
		Status:             models.ProjectStatusAwaitingPayment,
		ClientAccepted:     true,
		FreelancerAccepted: true,
		PaymentStatus:      models.PaymentStatusUnpaid,
	}
}

func TestPaymentService_CreateOrder_ContractPrice(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	svc := NewPaymentService(gateway, projects, nil, nil, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)
	price := 1500.0
	project.ContractPrice = &price

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	gateway.On("CreateOrder", ctx, project.ID.String(), "USD", 1500.0).Return(&paypal.Order{ID: "ORD-1", Status: "CREATED"}, nil)

	order, err := svc.CreateOrder(ctx, project.ID, clientID)
	assert.NoError(t, err)
	assert.Equal(t, "ORD-1", order.ID)
	gateway.AssertExpectations(t)
}

func TestPaymentService_CreateOrder_FallsBackToServicePrice(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	catalog := new(mockPaymentCatalog)
	svc := NewPaymentService(gateway, projects, catalog, nil, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)

	serviceID := uuid.New()
	servicePrice := 800.0
	req := &models.ServiceRequest{ID: project.RequestID, ServiceID: &serviceID}

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	catalog.On("GetRequestByID", ctx, project.RequestID).Return(req, nil)
	catalog.On("GetServiceByID", ctx, serviceID).Return(&models.Service{ID: serviceID, Price: &servicePrice}, nil)
	gateway.On("CreateOrder", ctx, project.ID.String(), "USD", 800.0).Return(&paypal.Order{ID: "ORD-2", Status: "CREATED"}, nil)

	_, err := svc.CreateOrder(ctx, project.ID, clientID)
	assert.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestPaymentService_CreateOrder_FallsBackToProposalPrice(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	catalog := new(mockPaymentCatalog)
	proposals := new(mockProposalStore)
	svc := NewPaymentService(gateway, projects, catalog, proposals, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)

	req := &models.ServiceRequest{ID: project.RequestID}
	proposalPrice := 450.0

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	catalog.On("GetRequestByID", ctx, project.RequestID).Return(req, nil)
	proposals.On("GetByID", ctx, project.ProposalID).Return(&models.Proposal{ID: project.ProposalID, ProposedPrice: &proposalPrice}, nil)
	gateway.On("CreateOrder", ctx, project.ID.String(), "USD", 450.0).Return(&paypal.Order{ID: "ORD-3", Status: "CREATED"}, nil)

	_, err := svc.CreateOrder(ctx, project.ID, clientID)
	assert.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestPaymentService_CreateOrder_NoAmount(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	catalog := new(mockPaymentCatalog)
	proposals := new(mockProposalStore)
	svc := NewPaymentService(gateway, projects, catalog, proposals, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	catalog.On("GetRequestByID", ctx, project.RequestID).Return(&models.ServiceRequest{ID: project.RequestID}, nil)
	proposals.On("GetByID", ctx, project.ProposalID).Return(&models.Proposal{ID: project.ProposalID}, nil)

	_, err := svc.CreateOrder(ctx, project.ID, clientID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "сумму оплаты")
}

func TestPaymentService_CreateOrder_ContractNotAccepted(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	svc := NewPaymentService(gateway, projects, nil, nil, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)
	project.FreelancerAccepted = false

	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.CreateOrder(ctx, project.ID, clientID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "обе стороны")
}

func TestPaymentService_CreateOrder_NotClient(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	svc := NewPaymentService(gateway, projects, nil, nil, nil, "USD")
	ctx := context.Background()

	project := acceptedProject(uuid.New())
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.CreateOrder(ctx, project.ID, uuid.New())
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestPaymentService_CaptureOrder_Success(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	svc := NewPaymentService(gateway, projects, nil, nil, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)

	captured := *project
	captured.Status = models.ProjectStatusInProgress
	captured.PaymentStatus = models.PaymentStatusPaid

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	gateway.On("CaptureOrder", ctx, "ORD-1").Return(&paypal.Order{ID: "ORD-1", Status: "COMPLETED"}, nil)
	projects.On("CapturePayment", ctx, project.ID, mock.Anything).Return(&captured, nil)

	updated, err := svc.CaptureOrder(ctx, "ORD-1", project.ID, clientID)
	assert.NoError(t, err)
	assert.Equal(t, models.ProjectStatusInProgress, updated.Status)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
}

func TestPaymentService_CaptureOrder_AlreadyPaid(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	svc := NewPaymentService(gateway, projects, nil, nil, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)
	project.Status = models.ProjectStatusInProgress
	project.PaymentStatus = models.PaymentStatusPaid

	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.CaptureOrder(ctx, "ORD-1", project.ID, clientID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	gateway.AssertNotCalled(t, "CaptureOrder", mock.Anything, mock.Anything)
}

func TestPaymentService_CaptureOrder_RaceLostInRepo(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	svc := NewPaymentService(gateway, projects, nil, nil, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	gateway.On("CaptureOrder", ctx, "ORD-1").Return(&paypal.Order{ID: "ORD-1", Status: "COMPLETED"}, nil)
	projects.On("CapturePayment", ctx, project.ID, mock.Anything).Return(nil, repository.ErrStatusNotEligible)

	_, err := svc.CaptureOrder(ctx, "ORD-1", project.ID, clientID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestPaymentService_CaptureOrder_NotCompleted(t *testing.T) {
	gateway := new(mockPaymentGateway)
	projects := new(mockPaymentProjectStore)
	svc := NewPaymentService(gateway, projects, nil, nil, nil, "USD")
	ctx := context.Background()

	clientID := uuid.New()
	project := acceptedProject(clientID)

	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	gateway.On("CaptureOrder", ctx, "ORD-1").Return(&paypal.Order{ID: "ORD-1", Status: "PENDING"}, nil)

	_, err := svc.CaptureOrder(ctx, "ORD-1", project.ID, clientID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не завершён")
}
