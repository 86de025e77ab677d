// Package upstream implements the HTTP client for the marketplace API that
// the session gateway fronts. It classifies responses into the terminal vs.
// transient error taxonomy and retries transient failures with bounded
// exponential backoff. 4xx responses are never retried: an authorization
// failure masked as a transient error would be worse than the outage itself.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/creatorhub/session-gateway/internal/api/metrics"
	"github.com/creatorhub/session-gateway/internal/core/domain"
)

const (
	endpointIdentity          = "identity"
	endpointProfile           = "profile"
	endpointInfluencerProfile = "influencer_profile"

	// Transient failures get the initial attempt plus maxRetries more.
	maxRetries = 2

	defaultTimeout         = 10 * time.Second
	initialBackoffInterval = 100 * time.Millisecond
)

// Config captures the settings for the upstream client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a typed client for the three session endpoints.
type Client struct {
	base string
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a Client. A default timeout is applied when none is
// provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: cfg.BaseURL,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// FetchIdentity calls GET /identity. 401 → domain.ErrUnauthenticated.
func (c *Client) FetchIdentity(ctx context.Context, bearer string) (*domain.Identity, error) {
	var out domain.Identity
	if err := c.get(ctx, endpointIdentity, "/identity", bearer, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchRegularProfile calls GET /profile. 404 → domain.ErrProfileNotFound.
func (c *Client) FetchRegularProfile(ctx context.Context, bearer string) (*domain.RegularProfile, error) {
	var out domain.RegularProfile
	if err := c.get(ctx, endpointProfile, "/profile", bearer, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchInfluencerProfile calls GET /influencer/profile. 404 → domain.ErrProfileNotFound.
func (c *Client) FetchInfluencerProfile(ctx context.Context, bearer string) (*domain.InfluencerProfile, error) {
	var out domain.InfluencerProfile
	if err := c.get(ctx, endpointInfluencerProfile, "/influencer/profile", bearer, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks reachability for the readiness probe. An anonymous 401 still
// proves the upstream is answering.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/identity", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream ping: %w", err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("upstream ping: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, path, bearer string, out any) error {
	start := time.Now()

	op := func() error {
		return c.attempt(ctx, endpoint, path, bearer, out)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), maxRetries),
		ctx,
	)

	err := backoff.Retry(op, policy)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, resultLabel(err)).Inc()
		return err
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

// attempt performs one HTTP round trip and classifies the outcome. Errors
// wrapped in backoff.Permanent stop the retry loop immediately.
func (c *Client) attempt(ctx context.Context, endpoint, path, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return backoff.Permanent(&domain.UpstreamError{Endpoint: endpoint, Err: err})
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failure: retryable.
		return &domain.UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(&domain.UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)})
		}
		return nil

	case resp.StatusCode == http.StatusUnauthorized:
		drain(resp.Body)
		return backoff.Permanent(&domain.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Err: domain.ErrUnauthenticated})

	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return backoff.Permanent(&domain.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Err: domain.ErrProfileNotFound})

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Other 4xx are authoritative but unexpected; never retried.
		drain(resp.Body)
		return backoff.Permanent(&domain.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode})

	default:
		// 5xx: retryable.
		drain(resp.Body)
		c.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("transient upstream failure")
		return &domain.UpstreamError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode),
		}
	}
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoffInterval
	return b
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrProfileNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "transient"
	default:
		return "unexpected"
	}
}

// drain discards the body so the connection can be reused.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
}
