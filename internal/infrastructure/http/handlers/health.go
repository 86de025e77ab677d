package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// HealthHandler handles GET /health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// UpstreamPinger checks the marketplace API is reachable. Implemented by the
// upstream client via its identity endpoint (an anonymous 401 still proves
// reachability).
type UpstreamPinger interface {
	Ping(ctx context.Context) error
}

// HealthDependenciesHandler handles GET /health/ready — readiness probe.
// Checks MongoDB, Redis, and the upstream API concurrently before declaring
// the gateway ready.
type HealthDependenciesHandler struct {
	mongo    *mongo.Database
	redis    *redis.Client
	upstream UpstreamPinger
}

func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client, upstream UpstreamPinger) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		mongo:    db,
		redis:    rdb,
		upstream: upstream,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	checks := map[string]func(context.Context) error{
		"mongodb": func(ctx context.Context) error { return h.mongo.Client().Ping(ctx, nil) },
		"redis":   func(ctx context.Context) error { return h.redis.Ping(ctx).Err() },
		"upstream": func(ctx context.Context) error {
			if h.upstream == nil {
				return nil
			}
			return h.upstream.Ping(ctx)
		},
	}

	var mu sync.Mutex
	results := make(map[string]error, len(checks))

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range checks {
		name, check := name, check
		g.Go(func() error {
			err := check(gctx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	deps := make(map[string]dependencyStatus, len(checks))
	healthy := true
	for name, err := range results {
		if err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps[name] = dependencyStatus{Status: "ok"}
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
