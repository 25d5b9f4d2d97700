package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
	"github.com/lifelink-dev/bloodlink-api/pkg/response"
)

type notificationService interface {
	Broadcast(ctx context.Context, req dto.BroadcastRequest) ([]models.DispatchOutcome, error)
	BroadcastAsync(ctx context.Context, req dto.BroadcastRequest) (*dto.BroadcastEnqueued, error)
	Feed(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationHandler exposes broadcast and per-user feed endpoints.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Broadcast godoc
// @Summary Broadcast a notification to an audience
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.BroadcastRequest true "Broadcast payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid broadcast payload"))
		return
	}

	if req.Async {
		ack, err := h.service.BroadcastAsync(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusAccepted, ack, nil)
		return
	}

	outcomes, err := h.service.Broadcast(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcomes, nil)
}

// Feed godoc
// @Summary List the authenticated user's notifications
// @Tags Notifications
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) Feed(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	notifications, err := h.service.Feed(c.Request.Context(), claims.UserID, queryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
