package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkaravaev/workhub-backend/internal/http/handlers/common"
	"github.com/vkaravaev/workhub-backend/internal/service"
)

// DisputeHandler отвечает за споры и решения администратора.
type DisputeHandler struct {
	disputes *service.DisputeService
}

// NewDisputeHandler создаёт экземпляр.
func NewDisputeHandler(disputes *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

type openDisputeRequest struct {
	ProjectID      uuid.UUID `json:"project_id" binding:"required"`
	Reason         string    `json:"reason" binding:"required"`
	PolicyAccepted bool      `json:"policy_accepted"`
}

// Open обрабатывает POST /api/disputes.
func (h *DisputeHandler) Open(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req openDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	d, err := h.disputes.OpenDispute(c.Request.Context(), service.OpenDisputeInput{
		ProjectID:      req.ProjectID,
		ClientID:       userID,
		Reason:         req.Reason,
		PolicyAccepted: req.PolicyAccepted,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// ListByProject обрабатывает GET /api/disputes/by-project/:projectId.
func (h *DisputeHandler) ListByProject(c *gin.Context) {
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

	disputes, err := h.disputes.ListProjectDisputes(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, disputes)
}

// Logs обрабатывает GET /api/disputes/:id/logs.
func (h *DisputeHandler) Logs(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	logs, err := h.disputes.DisputeLogs(c.Request.Context(), disputeID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

type resolveDisputeRequest struct {
	Note string `json:"note"`
}

// AdminAccept обрабатывает POST /api/admin/disputes/:id/accept.
// Спор принимается, проект возвращается в работу.
func (h *DisputeHandler) AdminAccept(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req resolveDisputeRequest
	_ = c.ShouldBindJSON(&req)

	d, err := h.disputes.AcceptDispute(c.Request.Context(), disputeID, adminID, req.Note)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// AdminReject обрабатывает POST /api/admin/disputes/:id/reject.
func (h *DisputeHandler) AdminReject(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req resolveDisputeRequest
	_ = c.ShouldBindJSON(&req)

	d, err := h.disputes.RejectDispute(c.Request.Context(), disputeID, adminID, req.Note)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}
