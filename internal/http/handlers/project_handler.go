package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vkaravaev/workhub-backend/internal/http/handlers/common"
	"github.com/vkaravaev/workhub-backend/internal/service"
)

// ProjectHandler отвечает за проекты, версии условий и завершение.
type ProjectHandler struct {
	projects *service.ProjectService
	scopes   *service.ScopeService
}

// NewProjectHandler создаёт экземпляр.
func NewProjectHandler(projects *service.ProjectService, scopes *service.ScopeService) *ProjectHandler {
	return &ProjectHandler{projects: projects, scopes: scopes}
}

// Get обрабатывает GET /api/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// ListMy обрабатывает GET /api/projects.
func (h *ProjectHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	projects, err := h.projects.ListMyProjects(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

type submitScopeRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Deliverables  string     `json:"deliverables"`
	Exclusions    string     `json:"exclusions"`
	RevisionLimit *int       `json:"revision_limit"`
	Deadline      *time.Time `json:"deadline"`
	Price         *float64   `json:"price"`
}

// SubmitScope обрабатывает POST /api/projects/:id/scope.
func (h *ProjectHandler) SubmitScope(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req submitScopeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	scope, err := h.scopes.SubmitScope(c.Request.Context(), service.SubmitScopeInput{
		ProjectID:     projectID,
		AuthorID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Deliverables:  req.Deliverables,
		Exclusions:    req.Exclusions,
		RevisionLimit: req.RevisionLimit,
		Deadline:      req.Deadline,
		Price:         req.Price,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, scope)
}

// CurrentScope обрабатывает GET /api/projects/:id/scope/current.
func (h *ProjectHandler) CurrentScope(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	scope, err := h.scopes.CurrentScope(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, scope)
}

// ScopeHistory обрабатывает GET /api/projects/:id/scope/history.
func (h *ProjectHandler) ScopeHistory(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	scopes, err := h.scopes.ScopeHistory(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, scopes)
}

// AcceptContract обрабатывает POST /api/projects/:id/accept.
func (h *ProjectHandler) AcceptContract(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.AcceptContract(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Approve обрабатывает POST /api/projects/:id/approve.
func (h *ProjectHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.ApproveProject(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}
