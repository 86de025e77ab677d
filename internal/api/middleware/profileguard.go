package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/session-gateway/internal/api/metrics"
	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/service"
)

// ProfileGuard gates the dashboard subtree: authenticated visitors whose role
// requires a profile that resolved as not-found are sent to the role-specific
// setup route. The setup routes themselves are wrapped by the same guard and
// pass through, so the redirect cannot loop.
//
// The next handler must never run while setup is needed and the path differs
// from the setup route; that is the property this middleware exists to
// enforce. Runs after AuthGuard.
func ProfileGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := service.ProfileDecision(Snapshot(c), c.Request().URL.Path)
			metrics.GuardDecisionsTotal.WithLabelValues("profile", decision.Kind.String()).Inc()

			switch decision.Kind {
			case domain.DecisionLoading:
				// Covers both pending resolution and transient profile
				// failures: a flaky upstream must not look like a missing
				// profile and bounce the visitor into setup.
				return loadingPlaceholder(c)
			case domain.DecisionRedirect:
				return c.Redirect(http.StatusSeeOther, decision.Target)
			}
			return next(c)
		}
	}
}
