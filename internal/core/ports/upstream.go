package ports

import (
	"context"

	"github.com/creatorhub/session-gateway/internal/core/domain"
)

// UpstreamAPI is the contract with the marketplace API. The bearer token of
// the visitor's session is forwarded verbatim on every call.
//
// Error taxonomy (see domain/errors.go):
//   - FetchIdentity: domain.ErrUnauthenticated on 401 (no retry),
//     domain.ErrUpstreamUnavailable after transient retries exhaust.
//   - Fetch*Profile: domain.ErrProfileNotFound on 404 (no retry),
//     domain.ErrUpstreamUnavailable after transient retries exhaust.
type UpstreamAPI interface {
	FetchIdentity(ctx context.Context, bearer string) (*domain.Identity, error)
	FetchRegularProfile(ctx context.Context, bearer string) (*domain.RegularProfile, error)
	FetchInfluencerProfile(ctx context.Context, bearer string) (*domain.InfluencerProfile, error)
}
