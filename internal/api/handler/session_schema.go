package handler

import "github.com/creatorhub/session-gateway/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Response types ---

// sessionResponse mirrors the session context value: user plus the derived
// flags the SPA shell branches on.
type sessionResponse struct {
	User            *domain.ResolvedUser `json:"user"`
	IsAuthenticated bool                 `json:"is_authenticated"`
	IsLoading       bool                 `json:"is_loading"`
	IsError         bool                 `json:"is_error"`
	NeedsSetup      bool                 `json:"needs_setup"`
	SetupRoute      string               `json:"setup_route,omitempty"`
}

type dashboardResponse struct {
	User *domain.ResolvedUser `json:"user"`
}

type setupResponse struct {
	Role       domain.Role `json:"role"`
	SetupRoute string      `json:"setup_route"`
}

func toSessionResponse(snap domain.Snapshot) sessionResponse {
	resp := sessionResponse{
		User:            snap.User,
		IsAuthenticated: snap.IsAuthenticated,
		IsLoading:       snap.IsLoading,
		IsError:         snap.IsError,
		NeedsSetup:      snap.ProfileMissing,
	}
	if snap.ProfileMissing && snap.User != nil {
		resp.SetupRoute = domain.SetupRoute(snap.User.Role)
	}
	return resp
}
