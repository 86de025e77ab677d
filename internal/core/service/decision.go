package service

import "github.com/creatorhub/session-gateway/internal/core/domain"

// Guard decisions are computed purely from the session snapshot and the
// current path. The middleware layer performs the matching side effect
// (placeholder response, 303, empty 403); nothing here touches the transport.

// AuthDecision gates any protected subtree: unauthenticated visitors are sent
// to the login route. Transient resolution failures keep the placeholder up
// instead of bouncing the visitor to login over a flaky upstream.
func AuthDecision(snap domain.Snapshot, loginRoute string) domain.GuardDecision {
	if snap.IsLoading || snap.IsError {
		return domain.GuardDecision{Kind: domain.DecisionLoading}
	}
	if !snap.IsAuthenticated {
		return domain.GuardDecision{Kind: domain.DecisionRedirect, Target: loginRoute}
	}
	return domain.GuardDecision{Kind: domain.DecisionAllow}
}

// ProfileDecision gates the dashboard subtree. States, per authenticated
// session:
//
//	CHECKING    — auth or the required profile query is unresolved, or the
//	              profile fetch failed transiently. A transient outage must
//	              never be misrouted into a setup redirect.
//	NEEDS_SETUP — the required profile resolved as not-found: redirect to the
//	              role-specific setup route unless the visitor is already on
//	              it (the guard must not block the very page it targets).
//	READY       — the role needs no profile, or a profile is present.
//
// Dashboard content must never pass through while NEEDS_SETUP holds and the
// path differs from the setup route.
func ProfileDecision(snap domain.Snapshot, path string) domain.GuardDecision {
	if snap.IsLoading || snap.IsError {
		return domain.GuardDecision{Kind: domain.DecisionLoading}
	}
	user := snap.User
	if user == nil || !user.Role.RequiresProfile() {
		return domain.GuardDecision{Kind: domain.DecisionAllow}
	}
	if snap.ProfileMissing {
		setup := domain.SetupRoute(user.Role)
		if path == setup {
			return domain.GuardDecision{Kind: domain.DecisionAllow}
		}
		return domain.GuardDecision{Kind: domain.DecisionRedirect, Target: setup}
	}
	return domain.GuardDecision{Kind: domain.DecisionAllow}
}

// RoleDecision restricts a subtree to one role. Anyone else gets nothing —
// no redirect. Routing is expected to have filtered navigation already; this
// is defense in depth, not primary enforcement.
func RoleDecision(snap domain.Snapshot, required domain.Role) domain.GuardDecision {
	if snap.IsLoading || snap.IsError {
		return domain.GuardDecision{Kind: domain.DecisionLoading}
	}
	if snap.IsAuthenticated && snap.User != nil && snap.User.Role == required {
		return domain.GuardDecision{Kind: domain.DecisionAllow}
	}
	return domain.GuardDecision{Kind: domain.DecisionDeny}
}
