package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/lifecycle"
	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/payment/paypal"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/repository"
)

// PaymentGateway описывает внешний платёжный провайдер.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, referenceID, currency string, value float64) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Order, error)
}

// PaymentProjectStore описывает зависимости платёжного сервиса от хранилища.
type PaymentProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	CapturePayment(ctx context.Context, projectID uuid.UUID, eligibleStatuses []string) (*models.Project, error)
}

// PaymentRequestStore возвращает заявку, услугу и принятое предложение
// для вычисления суммы оплаты.
type PaymentRequestStore interface {
	GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// PaymentProposalStore возвращает принятое предложение проекта.
type PaymentProposalStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
}

// PaymentService управляет созданием и захватом платежа за проект.
type PaymentService struct {
	gateway   PaymentGateway
	projects  PaymentProjectStore
	requests  PaymentRequestStore
	proposals PaymentProposalStore
	notifier  Notifier
	currency  string
}

func NewPaymentService(gateway PaymentGateway, projects PaymentProjectStore, requests PaymentRequestStore, proposals PaymentProposalStore, notifier Notifier, currency string) *PaymentService {
	if currency == "" {
		currency = "USD"
	}
	return &PaymentService{
		gateway:   gateway,
		projects:  projects,
		requests:  requests,
		proposals: proposals,
		notifier:  notifier,
		currency:  currency,
	}
}

// paymentEligibleStatuses — статусы, из которых допустим переход к оплате,
// включая легаси-синоним pending_contract.
var paymentEligibleStatuses = []string{
	models.ProjectStatusPendingContract,
	models.ProjectStatusAwaitingContract,
	models.ProjectStatusAwaitingPayment,
}

// CreateOrder создаёт заказ у платёжного провайдера для проекта.
// Требует платёжного статуса и принятия договора обеими сторонами.
func (s *PaymentService) CreateOrder(ctx context.Context, projectID, clientID uuid.UUID) (*paypal.Order, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	if !lifecycle.PaymentEligible(project.Status) {
		return nil, apperror.New(apperror.ErrCodeConflict, "проект не находится в статусе, допускающем оплату")
	}
	if !project.ClientAccepted || !project.FreelancerAccepted {
		return nil, apperror.New(apperror.ErrCodeValidation, "обе стороны должны принять условия договора перед оплатой")
	}

	amount, err := s.resolveAmount(ctx, project)
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, project.ID.String(), s.currency, amount)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "платёжный провайдер недоступен")
	}
	return order, nil
}

// CaptureOrder подтверждает оплату у провайдера и переводит проект в работу.
// Повторный захват по уже оплаченному проекту отклоняется без повторного
// списания: условный UPDATE по статусу даёт ноль строк.
func (s *PaymentService) CaptureOrder(ctx context.Context, orderID string, projectID, clientID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	if !lifecycle.PaymentEligible(project.Status) {
		return nil, apperror.New(apperror.ErrCodeConflict, "оплата по проекту уже захвачена или недоступна")
	}

	captured, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "платёжный провайдер недоступен")
	}
	if captured.Status != "COMPLETED" {
		return nil, apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("платёж не завершён, статус %s", captured.Status))
	}

	updated, err := s.projects.CapturePayment(ctx, projectID, paymentEligibleStatuses)
	if err != nil {
		if errors.Is(err, repository.ErrStatusNotEligible) {
			return nil, apperror.New(apperror.ErrCodeConflict, "оплата по проекту уже захвачена или недоступна")
		}
		return nil, err
	}

	notifyAsync(s.notifier, updated.FreelancerID, "payment.captured", updated)

	return updated, nil
}

// resolveAmount вычисляет сумму списания по цепочке приоритетов:
// цена договора → цена услуги → бюджет заявки → цена принятого
// предложения → предложенный бюджет заявки.
func (s *PaymentService) resolveAmount(ctx context.Context, project *models.Project) (float64, error) {
	if project.ContractPrice != nil && *project.ContractPrice > 0 {
		return *project.ContractPrice, nil
	}

	req, err := s.requests.GetRequestByID(ctx, project.RequestID)
	if err != nil {
		return 0, err
	}

	if req.ServiceID != nil {
		svc, err := s.requests.GetServiceByID(ctx, *req.ServiceID)
		if err == nil && svc.Price != nil && *svc.Price > 0 {
			return *svc.Price, nil
		}
	}

	if req.Budget != nil && *req.Budget > 0 {
		return *req.Budget, nil
	}

	proposal, err := s.proposals.GetByID(ctx, project.ProposalID)
	if err == nil && proposal.ProposedPrice != nil && *proposal.ProposedPrice > 0 {
		return *proposal.ProposedPrice, nil
	}

	if req.ProposedBudget != nil && *req.ProposedBudget > 0 {
		return *req.ProposedBudget, nil
	}

	return 0, apperror.New(apperror.ErrCodeValidation, "не удалось определить сумму оплаты проекта")
}
