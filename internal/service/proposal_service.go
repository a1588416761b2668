package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/pkg/apperror"
	"github.com/vkaravaev/workhub-backend/internal/repository"
	"github.com/vkaravaev/workhub-backend/internal/validation"
)

// ProposalStore описывает зависимости сервиса от хранилища предложений.
type ProposalStore interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Proposal, error)
}

// RequestStore описывает доступ к заявкам на услуги.
type RequestStore interface {
	GetRequestByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
}

// ProposalAcceptor выполняет атомарное принятие предложения.
type ProposalAcceptor interface {
	AcceptProposal(ctx context.Context, req *models.ServiceRequest, p *models.Proposal) (*repository.AcceptProposalResult, error)
}

// ProposalService инкапсулирует бизнес-логику откликов фрилансеров.
type ProposalService struct {
	proposals ProposalStore
	requests  RequestStore
	acceptor  ProposalAcceptor
	notifier  Notifier
}

func NewProposalService(proposals ProposalStore, requests RequestStore, acceptor ProposalAcceptor, notifier Notifier) *ProposalService {
	return &ProposalService{
		proposals: proposals,
		requests:  requests,
		acceptor:  acceptor,
		notifier:  notifier,
	}
}

// CreateProposal создаёт отклик фрилансера на открытую заявку.
// На пару (фрилансер, заявка) допускается не более одного отклика.
func (s *ProposalService) CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	if err := validation.ValidateLength("сообщение отклика", p.Message, validation.MinProposalMsgLength, validation.MaxProposalMsgLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice("предложенная цена", p.ProposedPrice); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	req, err := s.requests.GetRequestByID(ctx, p.RequestID)
	if err != nil {
		return nil, apperror.ErrRequestNotFound
	}
	if req.Status != models.RequestStatusOpen {
		return nil, apperror.New(apperror.ErrCodeConflict, "заявка уже не принимает отклики")
	}
	if req.ClientID == p.FreelancerID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя откликнуться на собственную заявку")
	}

	p.Status = models.ProposalStatusPending
	if err := s.proposals.Create(ctx, p); err != nil {
		if err == repository.ErrDuplicateProposal {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже откликались на эту заявку")
		}
		return nil, err
	}

	notifyAsync(s.notifier, req.ClientID, "proposal.created", p)

	return p, nil
}

// AcceptProposal принимает предложение от имени клиента-владельца заявки.
// Все изменения (заявка, отклики-соседи, проект, беседа, версия условий №1,
// системное сообщение) применяются одной транзакцией; уведомления уходят
// best-effort после фиксации.
func (s *ProposalService) AcceptProposal(ctx context.Context, proposalID, clientID uuid.UUID) (*repository.AcceptProposalResult, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}

	req, err := s.requests.GetRequestByID(ctx, proposal.RequestID)
	if err != nil {
		return nil, apperror.ErrRequestNotFound
	}
	if req.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperror.New(apperror.ErrCodeConflict, "предложение уже рассмотрено")
	}

	res, err := s.acceptor.AcceptProposal(ctx, req, proposal)
	if err != nil {
		if err == repository.ErrProposalNotPending {
			return nil, apperror.New(apperror.ErrCodeConflict, "предложение уже рассмотрено")
		}
		return nil, err
	}

	notifyAsync(s.notifier, proposal.FreelancerID, "proposal.accepted", res.Project)
	notifyAsync(s.notifier, clientID, "project.created", res.Project)
	for _, rejected := range res.RejectedFreelancers {
		notifyAsync(s.notifier, rejected, "proposal.rejected", map[string]any{"request_id": req.ID})
	}

	return res, nil
}

// GetProposal возвращает отклик, доступен его автору и владельцу заявки.
func (s *ProposalService) GetProposal(ctx context.Context, proposalID, userID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, apperror.ErrProposalNotFound
	}

	if proposal.FreelancerID != userID {
		req, err := s.requests.GetRequestByID(ctx, proposal.RequestID)
		if err != nil || req.ClientID != userID {
			return nil, apperror.ErrForbidden
		}
	}

	return proposal, nil
}

// ListRequestProposals возвращает отклики заявки её владельцу.
func (s *ProposalService) ListRequestProposals(ctx context.Context, requestID, clientID uuid.UUID) ([]models.Proposal, error) {
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, apperror.ErrRequestNotFound
	}
	if req.ClientID != clientID {
		return nil, apperror.ErrForbidden
	}

	return s.proposals.ListByRequest(ctx, requestID)
}

// ListMyProposals возвращает отклики фрилансера.
func (s *ProposalService) ListMyProposals(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.proposals.ListByFreelancer(ctx, freelancerID, limit, offset)
}
