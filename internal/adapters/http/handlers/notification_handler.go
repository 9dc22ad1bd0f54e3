package handlers

import (
	"driverdesk/internal/core/services"
	"driverdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles the notification center endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List returns the active toast stack
// @Summary List notifications
// @Description Get all active toasts, oldest first
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	return response.Success(c, "Notifications retrieved successfully", h.notificationService.Active())
}

// Dismiss removes one toast before it auto-expires
// @Summary Dismiss notification
// @Description Dismiss a toast by ID; unknown IDs are ignored
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Response
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Dismiss(c *fiber.Ctx) error {
	h.notificationService.Dismiss(c.Params("id"))
	return response.Success(c, "Notification dismissed", nil)
}

// Clear removes every toast at once
// @Summary Clear notifications
// @Description Dismiss all active toasts
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications [delete]
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	h.notificationService.Clear()
	return response.Success(c, "All notifications cleared", nil)
}
