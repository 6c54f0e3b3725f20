package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/service"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

// NotificationHandler exposes the caller's in-app notifications.
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListMine returns the caller's notifications, newest first.
// GET /api/v1/notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	personnelID, ok := MustGetPersonnelID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}
	unreadOnly := c.Query("unread") == "true"

	list, total, err := h.notificationSvc.ListMine(c.Request.Context(), personnelID, unreadOnly, page.Offset(), page.Limit())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, page.Page, page.Limit())
}

// MarkRead marks one of the caller's notifications as read.
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	personnelID, ok := MustGetPersonnelID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), c.Param("id"), personnelID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 16001, "notification not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
