package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/repository"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/response"
)

// NotificationHandler exposes in-app notifications.
type NotificationHandler struct {
	repo *repository.NotificationRepository
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(repo *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// List godoc
// @Summary All notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	notes, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications"))
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

type createNotificationRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// Create godoc
// @Summary Add a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "title and body are required"))
		return
	}
	note, err := h.repo.Add(c.Request.Context(), models.Notification{
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save notification"))
		return
	}
	response.Created(c, note)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid notification id"))
		return
	}
	found, err := h.repo.MarkRead(c.Request.Context(), id)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification"))
		return
	}
	if !found {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "notification not found"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "read": true}, nil)
}
