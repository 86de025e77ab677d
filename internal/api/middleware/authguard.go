package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/session-gateway/internal/api/metrics"
	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/service"
)

// AuthGuard gates a protected subtree: unauthenticated visitors get a single
// 303 to the login route, unresolved sessions get a retryable placeholder.
// It must run before any guard that depends on an authenticated identity.
//
// The decision is computed purely from the snapshot; this function only
// performs the matching side effect, exactly once per request — a burst of
// requests against a dead session does not hammer the upstream either, since
// the terminal 401 is negative-cached by the resolver.
func AuthGuard(loginRoute string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := service.AuthDecision(Snapshot(c), loginRoute)
			metrics.GuardDecisionsTotal.WithLabelValues("auth", decision.Kind.String()).Inc()

			switch decision.Kind {
			case domain.DecisionLoading:
				return loadingPlaceholder(c)
			case domain.DecisionRedirect:
				return c.Redirect(http.StatusSeeOther, decision.Target)
			}
			return next(c)
		}
	}
}

// loadingPlaceholder is the server-side analogue of rendering a loading state
// instead of protected content: the client should retry shortly rather than
// show an error flash.
func loadingPlaceholder(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
}
