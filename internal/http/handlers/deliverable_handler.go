package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/vkaravaev/workhub-backend/internal/http/handlers/common"
	"github.com/vkaravaev/workhub-backend/internal/service"
	"github.com/vkaravaev/workhub-backend/internal/storage"
)

// Запрещённые типы файлов: исполняемые форматы не принимаются.
var blockedMimeTypes = map[string]bool{
	"application/x-executable":          true,
	"application/x-msdownload":          true,
	"application/x-mach-binary":         true,
	"application/vnd.ms-cab-compressed": true,
}

// DeliverableHandler отвечает за сдачу и приёмку результатов работы.
type DeliverableHandler struct {
	deliverables *service.DeliverableService
	storage      *storage.DeliverableStorage
}

// NewDeliverableHandler создаёт экземпляр.
func NewDeliverableHandler(deliverables *service.DeliverableService, storage *storage.DeliverableStorage) *DeliverableHandler {
	return &DeliverableHandler{deliverables: deliverables, storage: storage}
}

// sniffMime определяет тип файла по магическим байтам; при неудаче
// возвращает application/octet-stream.
func sniffMime(src io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream", nil
	}
	return kind.MIME.Value, nil
}

// Upload обрабатывает POST /api/projects/upload-deliverable.
// Multipart поля: project_id, title, file.
func (h *DeliverableHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := uuid.Parse(c.PostForm("project_id"))
	if err != nil {
		common.RespondBadRequest(c, "поле project_id должно быть валидным UUID")
		return
	}

	title := c.PostForm("title")

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer src.Close()

	mimeType, err := sniffMime(src)
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	if blockedMimeTypes[mimeType] {
		common.RespondBadRequest(c, "исполняемые файлы запрещены")
		return
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), projectID, file.Filename, src)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	d, err := h.deliverables.Upload(c.Request.Context(), service.UploadInput{
		ProjectID:    projectID,
		FreelancerID: userID,
		Title:        title,
		FilePath:     filepath.ToSlash(relativePath),
		FileName:     file.Filename,
		FileSize:     size,
		MimeType:     mimeType,
	})
	if err != nil {
		// Файл уже сохранён, но запись не создана: убираем осиротевший файл.
		_ = h.storage.Delete(c.Request.Context(), relativePath)
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// Resubmit обрабатывает POST /api/deliverables/:id/resubmit.
// Multipart поле: file.
func (h *DeliverableHandler) Resubmit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	deliverableID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer src.Close()

	mimeType, err := sniffMime(src)
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	if blockedMimeTypes[mimeType] {
		common.RespondBadRequest(c, "исполняемые файлы запрещены")
		return
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), deliverableID, file.Filename, src)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	d, err := h.deliverables.Resubmit(c.Request.Context(), deliverableID, userID, filepath.ToSlash(relativePath), file.Filename, size, mimeType)
	if err != nil {
		_ = h.storage.Delete(c.Request.Context(), relativePath)
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// Approve обрабатывает POST /api/deliverables/:id/approve.
func (h *DeliverableHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	deliverableID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	d, err := h.deliverables.Approve(c.Request.Context(), deliverableID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

type rejectDeliverableRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject обрабатывает POST /api/deliverables/:id/reject.
func (h *DeliverableHandler) Reject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	deliverableID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req rejectDeliverableRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	d, err := h.deliverables.Reject(c.Request.Context(), deliverableID, userID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// Download обрабатывает GET /api/deliverables/:id/file.
// Файл отдаётся только участнику проекта.
func (h *DeliverableHandler) Download(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	deliverableID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	d, err := h.deliverables.GetDeliverable(c.Request.Context(), deliverableID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	file, err := h.storage.Open(c.Request.Context(), d.FilePath)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.FileName))
	c.DataFromReader(http.StatusOK, stat.Size(), d.MimeType, file, nil)
}

// ListByProject обрабатывает GET /api/projects/:id/deliverables.
func (h *DeliverableHandler) ListByProject(c *gin.Context) {
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

	deliverables, err := h.deliverables.ListProjectDeliverables(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, deliverables)
}
