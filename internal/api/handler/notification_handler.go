package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notification feed with its unread counter.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationFeedResponse
// @Failure      401  {object}  errorResponse
// @Router       /dashboard/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	feed, err := h.notifications.Feed(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notificationFeedResponse{
		Notifications: feed.Notifications,
		UnreadCount:   feed.UnreadCount,
	})
}

// MarkAllRead resets the caller's unread counter.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /dashboard/notifications/read [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Push publishes a notification to a user's feed. Admin-only: the route is
// wrapped by the role guard.
//
// @Summary      Push a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        body  body      pushNotificationRequest  true  "Notification to publish"
// @Success      201   {object}  domain.Notification
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /admin/notifications [post]
func (h *NotificationHandler) Push(c echo.Context) error {
	var req pushNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	n, err := h.notifications.Push(c.Request().Context(), ports.PushNotificationInput{
		UserID: req.UserID,
		Kind:   req.Kind,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, n)
}

// --- Request / Response types ---

type pushNotificationRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Kind   string `json:"kind"    validate:"required,oneof=system campaign message review"`
	Title  string `json:"title"   validate:"required,max=140"`
	Body   string `json:"body"    validate:"max=2000"`
}

type notificationFeedResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}
