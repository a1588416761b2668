package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/http/handlers/common"
	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/service"
)

// ProposalHandler отвечает за отклики фрилансеров.
type ProposalHandler struct {
	proposals *service.ProposalService
}

// NewProposalHandler создаёт экземпляр.
func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

type createProposalRequest struct {
	RequestID        uuid.UUID  `json:"request_id" binding:"required"`
	Message          string     `json:"message" binding:"required"`
	ProposedPrice    *float64   `json:"proposed_price"`
	ProposedDeadline *time.Time `json:"proposed_deadline"`
	ScopeText        string     `json:"scope_text"`
}

// Create обрабатывает POST /api/proposals.
func (h *ProposalHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req createProposalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal := &models.Proposal{
		RequestID:        req.RequestID,
		FreelancerID:     userID,
		Message:          req.Message,
		ProposedPrice:    req.ProposedPrice,
		ProposedDeadline: req.ProposedDeadline,
		ScopeText:        req.ScopeText,
	}

	created, err := h.proposals.CreateProposal(c.Request.Context(), proposal)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Accept обрабатывает POST /api/proposals/accept/:proposalId.
// В ответ возвращается созданный проект с беседой и первой версией условий.
func (h *ProposalHandler) Accept(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "proposalId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.proposals.AcceptProposal(c.Request.Context(), proposalID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":      result.Project,
		"conversation": result.Conversation,
		"scope":        result.Scope,
	})
}

// Get обрабатывает GET /api/proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.GetProposal(c.Request.Context(), proposalID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// ListByRequest обрабатывает GET /api/requests/:id/proposals.
func (h *ProposalHandler) ListByRequest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposals, err := h.proposals.ListRequestProposals(c.Request.Context(), requestID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// ListMy обрабатывает GET /api/proposals/my.
func (h *ProposalHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	proposals, err := h.proposals.ListMyProposals(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}
