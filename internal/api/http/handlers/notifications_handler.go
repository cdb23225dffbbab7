package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/binwatch/internal/access"
	"github.com/spec-kit/binwatch/internal/api/dto"
	"github.com/spec-kit/binwatch/internal/service"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

const notificationListLimit = 50

// NotificationsHandler exposes the per-user mailbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Session == nil {
		return apperrors.NewUnauthorized("session required")
	}

	items, err := h.notifications.ListForUser(c.UserContext(), state.Session.UID, notificationListLimit)
	if err != nil {
		return err
	}

	out := make([]dto.NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.NotificationResponse{
			ID:        item.ID,
			Title:     item.Title,
			Message:   item.Message,
			Type:      item.Type,
			ReportID:  item.ReportID,
			Read:      item.Read,
			CreatedAt: item.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// MarkRead handles POST /notifications/:id/read. Ownership is enforced in
// the repository; another user's entry reads as not found.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Session == nil {
		return apperrors.NewUnauthorized("session required")
	}

	if err := h.notifications.MarkRead(c.UserContext(), c.Params("id"), state.Session.UID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "read": true}})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Session == nil {
		return apperrors.NewUnauthorized("session required")
	}

	if err := h.notifications.MarkAllRead(c.UserContext(), state.Session.UID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}
