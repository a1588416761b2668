package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/validation"
)

// MarketplaceStore описывает хранилище услуг и заявок.
type MarketplaceStore interface {
	CreateService(ctx context.Context, s *models.Service) error
	GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListServices(ctx context.Context, limit, offset int) ([]models.Service, error)
	CreateRequest(ctx context.Context, req *models.ServiceRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	ListRequestsByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.ServiceRequest, error)
	ListOpenRequests(ctx context.Context, limit, offset int) ([]models.ServiceRequest, error)
}

// MarketplaceService управляет публикацией услуг и заявками на найм.
type MarketplaceService struct {
	store    MarketplaceStore
	notifier Notifier
}

func NewMarketplaceService(store MarketplaceStore, notifier Notifier) *MarketplaceService {
	return &MarketplaceService{store: store, notifier: notifier}
}

// PublishServiceInput содержит данные публикуемой услуги.
type PublishServiceInput struct {
	FreelancerID uuid.UUID
	Title        string
	Description  string
	Price        *float64
}

// PublishService публикует услугу фрилансера.
func (s *MarketplaceService) PublishService(ctx context.Context, in PublishServiceInput) (*models.Service, error) {
	if err := validation.ValidateLength("название услуги", in.Title, validation.MinTitleLength, validation.MaxTitleLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание услуги", in.Description, 0, validation.MaxScopeTextLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice("цена услуги", in.Price); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	svc := &models.Service{
		FreelancerID: in.FreelancerID,
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// GetService возвращает услугу по идентификатору.
func (s *MarketplaceService) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	svc, err := s.store.GetServiceByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeNotFound, "услуга не найдена")
	}
	return svc, nil
}

// ListServices возвращает каталог активных услуг.
func (s *MarketplaceService) ListServices(ctx context.Context, limit, offset int) ([]models.Service, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListServices(ctx, limit, offset)
}

// CreateRequestInput содержит данные заявки на найм.
type CreateRequestInput struct {
	ClientID       uuid.UUID
	ServiceID      *uuid.UUID
	Title          string
	Description    string
	Budget         *float64
	ProposedBudget *float64
	DeadlineAt     *time.Time
}

// CreateRequest создаёт заявку клиента. Заявка может ссылаться на
// опубликованную услугу либо быть свободной; в первом случае владелец
// услуги получает уведомление.
func (s *MarketplaceService) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.ServiceRequest, error) {
	if err := validation.ValidateLength("заголовок заявки", in.Title, validation.MinTitleLength, validation.MaxTitleLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание заявки", in.Description, 0, validation.MaxScopeTextLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice("бюджет", in.Budget); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice("предложенный бюджет", in.ProposedBudget); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	var owner *uuid.UUID
	if in.ServiceID != nil {
		svc, err := s.store.GetServiceByID(ctx, *in.ServiceID)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeNotFound, "услуга не найдена")
		}
		if !svc.IsActive {
			return nil, apperror.New(apperror.ErrCodeConflict, "услуга снята с публикации")
		}
		if svc.FreelancerID == in.ClientID {
			return nil, apperror.New(apperror.ErrCodeValidation, "нельзя нанять собственную услугу")
		}
		owner = &svc.FreelancerID
	}

	req := &models.ServiceRequest{
		ClientID:       in.ClientID,
		ServiceID:      in.ServiceID,
		Title:          in.Title,
		Description:    in.Description,
		Budget:         in.Budget,
		ProposedBudget: in.ProposedBudget,
		DeadlineAt:     in.DeadlineAt,
		Status:         models.RequestStatusOpen,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	if owner != nil {
		notifyAsync(s.notifier, *owner, "request.created", req)
	}

	return req, nil
}

// GetRequest возвращает заявку по идентификатору.
func (s *MarketplaceService) GetRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.store.GetRequestByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrRequestNotFound
	}
	return req, nil
}

// ListMyRequests возвращает заявки клиента.
func (s *MarketplaceService) ListMyRequests(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.ServiceRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListRequestsByClient(ctx, clientID, limit, offset)
}

// ListOpenRequests возвращает открытые заявки для фрилансеров.
func (s *MarketplaceService) ListOpenRequests(ctx context.Context, limit, offset int) ([]models.ServiceRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListOpenRequests(ctx, limit, offset)
}
