package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/http/handlers/common"
	"github.com/vkaravaev/workhub-backend/internal/service"
)

// PaymentHandler отвечает за создание и захват платежей PayPal.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler создаёт экземпляр.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateOrder обрабатывает POST /api/paypal/create-order/:projectId.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "projectId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.payments.CreateOrder(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

type captureOrderRequest struct {
	OrderID   string    `json:"order_id" binding:"required"`
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
}

// CaptureOrder обрабатывает POST /api/paypal/capture-order.
// Повторный захват по оплаченному проекту возвращает 409 без повторного
// списания.
func (h *PaymentHandler) CaptureOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req captureOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.payments.CaptureOrder(c.Request.Context(), req.OrderID, req.ProjectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}
