package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/creatorhub/session-gateway/internal/api/metrics"
	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
	"github.com/creatorhub/session-gateway/internal/query"
)

// SessionService reconciles the identity and profile queries into one session
// snapshot per request. It owns no state of its own: everything lives in the
// query store and is derived fresh on every resolution.
type SessionService struct {
	api     ports.UpstreamAPI
	queries *query.Store
	budget  time.Duration
	log     zerolog.Logger
}

const defaultResolveBudget = 5 * time.Second

// NewSessionService builds a SessionService. budget bounds how long a single
// resolution waits for in-flight fetches before reporting a loading snapshot.
func NewSessionService(api ports.UpstreamAPI, queries *query.Store, budget time.Duration, log zerolog.Logger) *SessionService {
	if budget <= 0 {
		budget = defaultResolveBudget
	}
	return &SessionService{api: api, queries: queries, budget: budget, log: log}
}

// Resolve produces the session snapshot for the given token. The identity
// query always runs first; a profile query is only ever issued once the
// identity succeeded and only for the profile matching the identity's role —
// a profile fetch for a role the visitor does not have must never go out.
func (s *SessionService) Resolve(ctx context.Context, token ports.SessionToken) domain.Snapshot {
	if token.Anonymous() {
		metrics.SessionResolutionsTotal.WithLabelValues("anonymous").Inc()
		return domain.Snapshot{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	idRes := s.queries.Resolve(ctx, s.identitySpec(token))
	switch idRes.State {
	case query.StateInFlight:
		metrics.SessionResolutionsTotal.WithLabelValues("loading").Inc()
		return domain.Snapshot{IsLoading: true}
	case query.StateFailed:
		if errors.Is(idRes.Err, domain.ErrUnauthenticated) {
			metrics.SessionResolutionsTotal.WithLabelValues("anonymous").Inc()
			return domain.Snapshot{}
		}
		s.log.Warn().Err(idRes.Err).Str("session", token.SessionID).Msg("identity resolution failed")
		metrics.SessionResolutionsTotal.WithLabelValues("error").Inc()
		return domain.Snapshot{IsError: true}
	}

	identity, ok := idRes.Value.(*domain.Identity)
	if !ok || identity == nil {
		metrics.SessionResolutionsTotal.WithLabelValues("error").Inc()
		return domain.Snapshot{IsError: true}
	}

	snap := domain.Snapshot{IsAuthenticated: true}

	var regular *domain.RegularProfile
	var influencer *domain.InfluencerProfile

	// The profile query is enabled only when the role requires one and the
	// identity fetch did not already embed it.
	if identity.Role.RequiresProfile() && identity.Profile == nil {
		pRes := s.queries.Resolve(ctx, s.profileSpec(token, identity.Role))
		switch pRes.State {
		case query.StateInFlight:
			snap.IsLoading = true
		case query.StateFailed:
			if errors.Is(pRes.Err, domain.ErrProfileNotFound) {
				// Not an error at this layer: the completeness guard turns
				// it into a setup redirect.
				snap.ProfileMissing = true
			} else {
				s.log.Warn().Err(pRes.Err).
					Str("session", token.SessionID).
					Str("role", string(identity.Role)).
					Msg("profile resolution failed")
				snap.IsError = true
			}
		case query.StateSuccess:
			switch identity.Role {
			case domain.RoleUser:
				regular, _ = pRes.Value.(*domain.RegularProfile)
			case domain.RoleInfluencer:
				influencer, _ = pRes.Value.(*domain.InfluencerProfile)
			}
		}
	}

	snap.User = Merge(identity, regular, influencer)

	if influencer != nil && influencer.Profile == nil && snap.User != nil && snap.User.Profile != nil {
		metrics.FallbackProfilesTotal.Inc()
		s.log.Debug().Str("user", identity.ID).Msg("profile synthesized from email local part")
	}

	switch {
	case snap.IsError:
		metrics.SessionResolutionsTotal.WithLabelValues("error").Inc()
	case snap.IsLoading:
		metrics.SessionResolutionsTotal.WithLabelValues("loading").Inc()
	default:
		metrics.SessionResolutionsTotal.WithLabelValues("authenticated").Inc()
	}

	return snap
}

// Invalidate drops every cached query under the session's key prefix so the
// next resolution re-fetches everything. Called on logout and after external
// write flows (login, profile creation).
func (s *SessionService) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.queries.Invalidate(ctx, sessionKeyPrefix(sessionID))
}

// Stable query keys: session:<id>:identity | profile | influencer_profile.
func sessionKeyPrefix(sessionID string) string {
	return fmt.Sprintf("session:%s:", sessionID)
}

func (s *SessionService) identitySpec(token ports.SessionToken) query.Spec {
	return query.Spec{
		Key: sessionKeyPrefix(token.SessionID) + "identity",
		Fetch: func(ctx context.Context) (any, error) {
			return s.api.FetchIdentity(ctx, token.Bearer)
		},
		Encode: encodeJSON,
		Decode: decodeJSON[domain.Identity],
	}
}

func (s *SessionService) profileSpec(token ports.SessionToken, role domain.Role) query.Spec {
	if role == domain.RoleInfluencer {
		return query.Spec{
			Key: sessionKeyPrefix(token.SessionID) + "influencer_profile",
			Fetch: func(ctx context.Context) (any, error) {
				return s.api.FetchInfluencerProfile(ctx, token.Bearer)
			},
			Encode: encodeJSON,
			Decode: decodeJSON[domain.InfluencerProfile],
		}
	}
	return query.Spec{
		Key: sessionKeyPrefix(token.SessionID) + "profile",
		Fetch: func(ctx context.Context) (any, error) {
			return s.api.FetchRegularProfile(ctx, token.Bearer)
		},
		Encode: encodeJSON,
		Decode: decodeJSON[domain.RegularProfile],
	}
}

func encodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decodeJSON[T any](payload []byte) (any, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
