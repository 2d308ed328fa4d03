package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/queue"
	"github.com/ustamapp/ustamapp-client/internal/transport"
	"go.uber.org/zap"
)

// createNotificationRequest is the development endpoint payload for pushing
// a notification to a user.
type createNotificationRequest struct {
	UserID    int    `json:"user_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	ActionURL string `json:"actionUrl"`
}

func (h *Handler) CreateNotification(c *fiber.Ctx) error {
	var req createNotificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	n, err := toDomainNotification(req)
	if err != nil {
		return toHTTPError(err)
	}

	created, err := h.backend.Notify(req.UserID, n)
	if err != nil {
		return toHTTPError(err)
	}

	h.push(c, req.UserID, created)

	return transport.OK(c, fiber.StatusCreated, created)
}

// push is best-effort: the notification is already stored and will reach
// the client on its next poll.
func (h *Handler) push(c *fiber.Ctx, userID int, n domain.Notification) {
	if h.publisher == nil {
		return
	}

	queueName := queue.QueueName(userID)
	err := h.publisher.Publish(c.UserContext(), queueName, queue.NotificationMessage{
		UserID:       userID,
		RequestID:    requestID(c),
		Notification: n,
	})
	if err != nil {
		h.logger.Warn("failed to push notification",
			zap.String("queue", queueName),
			zap.String("notification_id", n.ID),
			zap.Error(err),
		)
	}
}

// notify stores and pushes a notification raised by another route. Failing
// to notify never fails that route.
func (h *Handler) notify(c *fiber.Ctx, userID int, n domain.Notification) {
	created, err := h.backend.Notify(userID, n)
	if err != nil {
		h.logger.Warn("failed to store notification", zap.Int("user_id", userID), zap.Error(err))
		return
	}
	h.push(c, userID, created)
}

func toDomainNotification(req createNotificationRequest) (domain.Notification, error) {
	notificationType, err := domain.ParseNotificationType(req.Type)
	if err != nil {
		return domain.Notification{}, err
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return domain.Notification{}, err
	}

	return domain.Notification{
		Type:      notificationType,
		Title:     strings.TrimSpace(req.Title),
		Message:   strings.TrimSpace(req.Message),
		Priority:  priority,
		ActionURL: strings.TrimSpace(req.ActionURL),
	}, nil
}

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	return transport.OK(c, fiber.StatusOK, h.backend.Notifications(currentUser(c).ID))
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	if err := h.backend.MarkRead(currentUser(c).ID, c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return transport.OK(c, fiber.StatusOK, nil)
}

func (h *Handler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	h.backend.MarkAllRead(currentUser(c).ID)
	return transport.OK(c, fiber.StatusOK, nil)
}

func (h *Handler) DeleteNotification(c *fiber.Ctx) error {
	if err := h.backend.DeleteNotification(currentUser(c).ID, c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return transport.OK(c, fiber.StatusOK, nil)
}
