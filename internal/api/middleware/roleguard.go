package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/session-gateway/internal/api/metrics"
	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/service"
)

// RoleGuard restricts a subtree to one role. Everyone else — unauthenticated
// visitors included — gets an empty 403, never a redirect: navigation is
// expected to have filtered these requests already, this is defense in depth.
func RoleGuard(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := service.RoleDecision(Snapshot(c), required)
			metrics.GuardDecisionsTotal.WithLabelValues("role", decision.Kind.String()).Inc()

			switch decision.Kind {
			case domain.DecisionLoading:
				return loadingPlaceholder(c)
			case domain.DecisionDeny:
				return c.NoContent(http.StatusForbidden)
			}
			return next(c)
		}
	}
}
