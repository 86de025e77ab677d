// Package query implements the keyed asynchronous fetch cache the session
// resolver is built on: per-key state tracking, TTL staleness, in-flight
// deduplication, a short negative cache for authoritative failures, and an
// optional shared value store so multiple gateway replicas do not repeat the
// same upstream call.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/creatorhub/session-gateway/internal/api/metrics"
)

// State is the lifecycle state of a cache entry.
type State int

const (
	StateIdle     State = iota // never fetched
	StateInFlight              // fetch issued, not yet resolved
	StateSuccess               // value present
	StateFailed                // last fetch failed
)

// Result is what a caller gets back from Resolve. StateInFlight means the
// caller's wait budget ran out while the fetch was still pending; the fetch
// keeps running and lands in the cache for the next resolution.
type Result struct {
	State     State
	Value     any
	Err       error
	FetchedAt time.Time
}

// FetchFunc performs the underlying fetch for a key.
type FetchFunc func(ctx context.Context) (any, error)

// Spec describes one keyed fetch. Encode/Decode are optional; when both are
// set and the store has a shared value store, successful values are written
// through and other replicas can read them back.
type Spec struct {
	Key    string
	TTL    time.Duration // 0 → store default
	Fetch  FetchFunc
	Encode func(v any) ([]byte, error)
	Decode func(payload []byte) (any, error)
}

// ValueStore is the shared (cross-replica) value store. Implemented by the
// Redis adapter; absent in single-replica and test setups.
type ValueStore interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Options configures a Store.
type Options struct {
	// TTL is the default freshness window for successful values.
	TTL time.Duration
	// NegativeTTL bounds how long an authoritative failure (401/404) is
	// served from cache before the upstream is asked again.
	NegativeTTL time.Duration
	// Terminal classifies errors eligible for negative caching. Required.
	Terminal func(error) bool
	// Values is the optional shared value store.
	Values ValueStore
}

const (
	defaultTTL         = 30 * time.Second
	defaultNegativeTTL = 5 * time.Second
)

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group

	ttl      time.Duration
	negTTL   time.Duration
	terminal func(error) bool
	values   ValueStore
	now      func() time.Time
}

type entry struct {
	state     State
	value     any
	err       error
	fetchedAt time.Time
}

func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	negTTL := opts.NegativeTTL
	if negTTL <= 0 {
		negTTL = defaultNegativeTTL
	}
	terminal := opts.Terminal
	if terminal == nil {
		terminal = func(error) bool { return false }
	}
	return &Store{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		negTTL:   negTTL,
		terminal: terminal,
		values:   opts.Values,
		now:      time.Now,
	}
}

// Resolve returns the cached value for spec.Key when fresh, otherwise fetches
// it. Concurrent resolutions of the same key share a single fetch. The wait
// is bounded by ctx: when ctx expires first, the caller gets StateInFlight
// and the fetch completes into the cache in the background — a late result
// for an already-invalidated session simply lands in a discarded keyspace.
func (s *Store) Resolve(ctx context.Context, spec Spec) Result {
	ttl := spec.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	if e, ok := s.entries[spec.Key]; ok {
		switch e.state {
		case StateSuccess:
			if s.now().Sub(e.fetchedAt) < ttl {
				res := Result{State: StateSuccess, Value: e.value, FetchedAt: e.fetchedAt}
				s.mu.Unlock()
				metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
				return res
			}
			metrics.QueryCacheTotal.WithLabelValues("stale").Inc()
		case StateFailed:
			if s.terminal(e.err) && s.now().Sub(e.fetchedAt) < s.negTTL {
				res := Result{State: StateFailed, Err: e.err, FetchedAt: e.fetchedAt}
				s.mu.Unlock()
				metrics.QueryCacheTotal.WithLabelValues("negative").Inc()
				return res
			}
		}
	}
	s.mu.Unlock()

	if res, ok := s.fromValueStore(ctx, spec); ok {
		return res
	}

	metrics.QueryCacheTotal.WithLabelValues("miss").Inc()

	ch := s.group.DoChan(spec.Key, func() (any, error) {
		s.setState(spec.Key, StateInFlight)
		// The fetch must outlive a caller that gives up waiting.
		v, err := spec.Fetch(context.WithoutCancel(ctx))
		s.complete(spec, v, err)
		return v, err
	})

	select {
	case <-ctx.Done():
		return Result{State: StateInFlight}
	case r := <-ch:
		if r.Err != nil {
			return Result{State: StateFailed, Err: r.Err, FetchedAt: s.now()}
		}
		return Result{State: StateSuccess, Value: r.Val, FetchedAt: s.now()}
	}
}

// Peek reports the current entry state without triggering a fetch.
func (s *Store) Peek(key string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Result{State: StateIdle}
	}
	return Result{State: e.state, Value: e.value, Err: e.err, FetchedAt: e.fetchedAt}
}

// Invalidate drops every entry whose key starts with prefix, locally and in
// the shared value store.
func (s *Store) Invalidate(ctx context.Context, prefix string) error {
	s.mu.Lock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()

	if s.values != nil {
		return s.values.DeletePrefix(ctx, prefix)
	}
	return nil
}

// fromValueStore tries the shared store; a hit is promoted into the local
// cache so subsequent resolutions are served in-process.
func (s *Store) fromValueStore(ctx context.Context, spec Spec) (Result, bool) {
	if s.values == nil || spec.Decode == nil {
		return Result{}, false
	}

	payload, ok, err := s.values.Get(ctx, spec.Key)
	if err != nil || !ok {
		return Result{}, false
	}
	v, err := spec.Decode(payload)
	if err != nil {
		return Result{}, false
	}

	now := s.now()
	s.mu.Lock()
	s.entries[spec.Key] = &entry{state: StateSuccess, value: v, fetchedAt: now}
	s.mu.Unlock()

	metrics.QueryCacheTotal.WithLabelValues("shared_hit").Inc()
	return Result{State: StateSuccess, Value: v, FetchedAt: now}, true
}

func (s *Store) setState(key string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.state = state
}

func (s *Store) complete(spec Spec, v any, err error) {
	now := s.now()

	s.mu.Lock()
	e, ok := s.entries[spec.Key]
	if !ok {
		// Invalidated while in flight: drop the late result on the floor.
		s.mu.Unlock()
		return
	}
	if err != nil {
		e.state = StateFailed
		e.err = err
		e.value = nil
	} else {
		e.state = StateSuccess
		e.value = v
		e.err = nil
	}
	e.fetchedAt = now
	s.mu.Unlock()

	if err == nil && s.values != nil && spec.Encode != nil {
		ttl := spec.TTL
		if ttl <= 0 {
			ttl = s.ttl
		}
		if payload, encErr := spec.Encode(v); encErr == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = s.values.Set(ctx, spec.Key, payload, ttl)
		}
	}
}
