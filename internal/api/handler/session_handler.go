package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
)

type SessionHandler struct {
	resolver ports.SessionResolver
}

func NewSessionHandler(resolver ports.SessionResolver) *SessionHandler {
	return &SessionHandler{resolver: resolver}
}

// Current returns the session context value for the SPA shell.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	snap, err := ctxSnapshot(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

// Logout clears the session cookie and resets the session's cached queries
// across all replicas; the next resolution re-fetches everything.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Failure      500  {object}  errorResponse
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	token := ctxToken(c)
	if !token.Anonymous() {
		if err := h.resolver.Invalidate(c.Request().Context(), token.SessionID); err != nil {
			return err
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-24 * time.Hour),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.NoContent(http.StatusNoContent)
}

// Dashboard returns the dashboard shell payload for a fully resolved session.
// Only reachable through the auth and profile-completeness guards.
//
// @Summary      Dashboard shell
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /dashboard [get]
func (h *SessionHandler) Dashboard(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{User: user})
}

// Setup serves the profile setup shell. It sits behind the same
// profile-completeness guard as the dashboard: the guard lets its own target
// route through, so visitors who still need setup land here instead of
// looping.
//
// @Summary      Profile setup shell
// @Tags         session
// @Produce      json
// @Success      200  {object}  setupResponse
// @Failure      401  {object}  errorResponse
// @Router       /profile/setup [get]
func (h *SessionHandler) Setup(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupResponse{
		Role:       user.Role,
		SetupRoute: domain.SetupRoute(user.Role),
	})
}
