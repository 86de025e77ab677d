package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
	"github.com/creatorhub/session-gateway/internal/query"
)

// ---------------------------------------------------------------------------
// Stub upstream API
// ---------------------------------------------------------------------------

type stubUpstream struct {
	mu sync.Mutex

	identity    *domain.Identity
	identityErr error

	regular    *domain.RegularProfile
	regularErr error

	influencer    *domain.InfluencerProfile
	influencerErr error

	identityCalls   int
	regularCalls    int
	influencerCalls int
}

func (s *stubUpstream) FetchIdentity(_ context.Context, _ string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identityCalls++
	if s.identityErr != nil {
		return nil, s.identityErr
	}
	return s.identity, nil
}

func (s *stubUpstream) FetchRegularProfile(_ context.Context, _ string) (*domain.RegularProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regularCalls++
	if s.regularErr != nil {
		return nil, s.regularErr
	}
	return s.regular, nil
}

func (s *stubUpstream) FetchInfluencerProfile(_ context.Context, _ string) (*domain.InfluencerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.influencerCalls++
	if s.influencerErr != nil {
		return nil, s.influencerErr
	}
	return s.influencer, nil
}

func (s *stubUpstream) calls() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identityCalls, s.regularCalls, s.influencerCalls
}

func newTestService(api ports.UpstreamAPI) *SessionService {
	queries := query.NewStore(query.Options{
		TTL:         time.Minute,
		NegativeTTL: time.Minute,
		Terminal:    domain.IsTerminal,
	})
	return NewSessionService(api, queries, time.Second, zerolog.Nop())
}

var testToken = ports.SessionToken{SessionID: "s1", Bearer: "tok"}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestResolve_AnonymousToken(t *testing.T) {
	api := &stubUpstream{}
	svc := newTestService(api)

	snap := svc.Resolve(context.Background(), ports.SessionToken{})
	if snap.IsAuthenticated || snap.IsLoading || snap.IsError {
		t.Fatalf("expected clean anonymous snapshot, got %+v", snap)
	}
	if n, _, _ := api.calls(); n != 0 {
		t.Fatalf("no token must mean no identity fetch, got %d calls", n)
	}
}

func TestResolve_UserWithProfile(t *testing.T) {
	api := &stubUpstream{
		identity: &domain.Identity{ID: "u1", Email: "brand@x.com", Role: domain.RoleUser},
		regular:  &domain.RegularProfile{ID: "p1", Username: "acme"},
	}
	svc := newTestService(api)

	snap := svc.Resolve(context.Background(), testToken)
	if !snap.IsAuthenticated || snap.IsLoading || snap.IsError {
		t.Fatalf("unexpected snapshot flags: %+v", snap)
	}
	if snap.User == nil || snap.User.Profile == nil || snap.User.Profile.ID != "p1" {
		t.Fatalf("expected merged regular profile, got %+v", snap.User)
	}
}

func TestResolve_InfluencerFallbackSynthesis(t *testing.T) {
	api := &stubUpstream{
		identity:   &domain.Identity{ID: "u1", Email: "jane@x.com", Role: domain.RoleInfluencer},
		influencer: &domain.InfluencerProfile{ID: "i1"},
	}
	svc := newTestService(api)

	snap := svc.Resolve(context.Background(), testToken)
	p := snap.User.Profile
	if p == nil || p.ID != "i1" || p.Username != "jane" || p.FullName != "jane" {
		t.Fatalf("expected synthesized profile, got %+v", p)
	}
	if snap.User.InfluencerProfile == nil || snap.User.InfluencerProfile.ID != "i1" {
		t.Fatalf("expected influencer ref, got %+v", snap.User.InfluencerProfile)
	}
}

func TestResolve_EmbeddedProfileSkipsProfileFetch(t *testing.T) {
	api := &stubUpstream{
		identity: &domain.Identity{
			ID:      "u1",
			Email:   "brand@x.com",
			Role:    domain.RoleUser,
			Profile: &domain.RegularProfile{ID: "p0", Username: "embedded"},
		},
	}
	svc := newTestService(api)

	snap := svc.Resolve(context.Background(), testToken)
	if snap.User.Profile == nil || snap.User.Profile.ID != "p0" {
		t.Fatalf("expected embedded profile, got %+v", snap.User.Profile)
	}
	if _, reg, inf := api.calls(); reg != 0 || inf != 0 {
		t.Fatalf("profile fetch must not be issued when identity embeds one (reg=%d inf=%d)", reg, inf)
	}
}

func TestResolve_AdminIssuesNoProfileFetch(t *testing.T) {
	api := &stubUpstream{
		identity: &domain.Identity{ID: "a1", Email: "ops@x.com", Role: domain.RoleAdmin},
	}
	svc := newTestService(api)

	snap := svc.Resolve(context.Background(), testToken)
	if !snap.IsAuthenticated || snap.User.Profile != nil {
		t.Fatalf("unexpected admin snapshot: %+v", snap)
	}
	if _, reg, inf := api.calls(); reg != 0 || inf != 0 {
		t.Fatalf("profile fetches must never be issued for admins (reg=%d inf=%d)", reg, inf)
	}
}

func TestResolve_Unauthenticated401IsNegativeCached(t *testing.T) {
	api := &stubUpstream{identityErr: domain.ErrUnauthenticated}
	svc := newTestService(api)

	for i := 0; i < 3; i++ {
		snap := svc.Resolve(context.Background(), testToken)
		if snap.IsAuthenticated || snap.IsError {
			t.Fatalf("401 must resolve to a clean anonymous snapshot, got %+v", snap)
		}
	}

	// Re-renders must not hammer the upstream: the terminal 401 is served
	// from the negative cache.
	if n, _, _ := api.calls(); n != 1 {
		t.Fatalf("expected a single identity fetch across re-renders, got %d", n)
	}
}

func TestResolve_ProfileNotFoundIsNotAnError(t *testing.T) {
	api := &stubUpstream{
		identity:      &domain.Identity{ID: "u1", Email: "jane@x.com", Role: domain.RoleInfluencer},
		influencerErr: domain.ErrProfileNotFound,
	}
	svc := newTestService(api)

	snap := svc.Resolve(context.Background(), testToken)
	if !snap.ProfileMissing {
		t.Fatalf("expected ProfileMissing on 404, got %+v", snap)
	}
	if snap.IsError || snap.IsLoading {
		t.Fatalf("404 must not surface as error or loading: %+v", snap)
	}
	if !snap.IsAuthenticated || snap.User == nil {
		t.Fatalf("identity must survive a missing profile: %+v", snap)
	}
}

func TestResolve_TransientProfileFailureIsError(t *testing.T) {
	api := &stubUpstream{
		identity:   &domain.Identity{ID: "u1", Email: "brand@x.com", Role: domain.RoleUser},
		regularErr: domain.ErrUpstreamUnavailable,
	}
	svc := newTestService(api)

	snap := svc.Resolve(context.Background(), testToken)
	if !snap.IsError {
		t.Fatalf("expected IsError for transient profile failure, got %+v", snap)
	}
	if snap.ProfileMissing {
		t.Fatalf("a 500 must never be reported as a missing profile")
	}
}

func TestResolve_IdentityCachedAcrossResolutions(t *testing.T) {
	api := &stubUpstream{
		identity: &domain.Identity{ID: "u1", Email: "brand@x.com", Role: domain.RoleUser},
		regular:  &domain.RegularProfile{ID: "p1"},
	}
	svc := newTestService(api)

	svc.Resolve(context.Background(), testToken)
	svc.Resolve(context.Background(), testToken)

	if n, reg, _ := api.calls(); n != 1 || reg != 1 {
		t.Fatalf("repeated resolutions must share cache entries (identity=%d profile=%d)", n, reg)
	}
}

func TestResolve_InvalidateForcesRefetch(t *testing.T) {
	api := &stubUpstream{
		identity: &domain.Identity{ID: "u1", Email: "brand@x.com", Role: domain.RoleUser},
		regular:  &domain.RegularProfile{ID: "p1"},
	}
	svc := newTestService(api)

	svc.Resolve(context.Background(), testToken)
	if err := svc.Invalidate(context.Background(), testToken.SessionID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	svc.Resolve(context.Background(), testToken)

	if n, _, _ := api.calls(); n != 2 {
		t.Fatalf("expected refetch after invalidation, got %d identity calls", n)
	}
}
