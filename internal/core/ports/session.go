package ports

import (
	"context"

	"github.com/creatorhub/session-gateway/internal/core/domain"
)

// SessionToken identifies the visitor's session to the resolver.
type SessionToken struct {
	// SessionID keys the query cache; derived from the token's subject claim.
	SessionID string
	// Bearer is the raw token, forwarded to the upstream API.
	Bearer string
}

// Anonymous reports whether no session token was presented at all.
func (t SessionToken) Anonymous() bool {
	return t.SessionID == "" || t.Bearer == ""
}

// SessionResolver turns a session token into a session snapshot by
// reconciling the identity and profile queries.
type SessionResolver interface {
	Resolve(ctx context.Context, token SessionToken) domain.Snapshot

	// Invalidate drops every cached query for the session. Called on logout
	// and by write flows (profile creation) so the next resolution re-fetches.
	Invalidate(ctx context.Context, sessionID string) error
}
