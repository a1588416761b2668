package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/http/handlers/common"
	"github.com/vkaravaev/workhub-backend/internal/service"
)

// MarketplaceHandler отвечает за услуги и заявки на найм.
type MarketplaceHandler struct {
	marketplace *service.MarketplaceService
}

// NewMarketplaceHandler создаёт экземпляр.
func NewMarketplaceHandler(marketplace *service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplace: marketplace}
}

type publishServiceRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// PublishService обрабатывает POST /api/services.
func (h *MarketplaceHandler) PublishService(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req publishServiceRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	svc, err := h.marketplace.PublishService(c.Request.Context(), service.PublishServiceInput{
		FreelancerID: userID,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// GetService обрабатывает GET /api/services/:id.
func (h *MarketplaceHandler) GetService(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	svc, err := h.marketplace.GetService(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, svc)
}

// ListServices обрабатывает GET /api/services.
func (h *MarketplaceHandler) ListServices(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	services, err := h.marketplace.ListServices(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, services)
}

type createRequestRequest struct {
	ServiceID      *uuid.UUID `json:"service_id"`
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	Budget         *float64   `json:"budget"`
	ProposedBudget *float64   `json:"proposed_budget"`
	DeadlineAt     *time.Time `json:"deadline_at"`
}

// CreateRequest обрабатывает POST /api/requests.
func (h *MarketplaceHandler) CreateRequest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req createRequestRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	created, err := h.marketplace.CreateRequest(c.Request.Context(), service.CreateRequestInput{
		ClientID:       userID,
		ServiceID:      req.ServiceID,
		Title:          req.Title,
		Description:    req.Description,
		Budget:         req.Budget,
		ProposedBudget: req.ProposedBudget,
		DeadlineAt:     req.DeadlineAt,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetRequest обрабатывает GET /api/requests/:id.
func (h *MarketplaceHandler) GetRequest(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.marketplace.GetRequest(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// ListMyRequests обрабатывает GET /api/requests/my.
func (h *MarketplaceHandler) ListMyRequests(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	requests, err := h.marketplace.ListMyRequests(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// ListOpenRequests обрабатывает GET /api/requests.
func (h *MarketplaceHandler) ListOpenRequests(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	requests, err := h.marketplace.ListOpenRequests(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}
