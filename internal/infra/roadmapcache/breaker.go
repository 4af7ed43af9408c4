package roadmapcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
)

type lookup struct {
	roadmap domain.Roadmap
	found   bool
}

// BreakerCache wraps a cache with a circuit breaker so a failing backend is
// skipped quickly instead of slowing every request.
type BreakerCache struct {
	next   domain.Cache
	reads  *gobreaker.CircuitBreaker[lookup]
	writes *gobreaker.CircuitBreaker[struct{}]
}

// BreakerSettings tune when the circuit opens and how long it stays open.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// NewBreakerCache guards next with independent read and write breakers.
func NewBreakerCache(next domain.Cache, settings BreakerSettings, logger *slog.Logger) *BreakerCache {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	log := logger.With("component", "roadmapcache.breaker")
	build := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     settings.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.MaxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("cache breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}
	}
	return &BreakerCache{
		next:   next,
		reads:  gobreaker.NewCircuitBreaker[lookup](build("roadmap-cache-read")),
		writes: gobreaker.NewCircuitBreaker[struct{}](build("roadmap-cache-write")),
	}
}

func (c *BreakerCache) Get(ctx context.Context, key string) (domain.Roadmap, bool, error) {
	res, err := c.reads.Execute(func() (lookup, error) {
		roadmap, found, err := c.next.Get(ctx, key)
		return lookup{roadmap: roadmap, found: found}, err
	})
	if err != nil {
		return domain.Roadmap{}, false, err
	}
	return res.roadmap, res.found, nil
}

func (c *BreakerCache) Set(ctx context.Context, key string, roadmap domain.Roadmap, ttl time.Duration) error {
	_, err := c.writes.Execute(func() (struct{}, error) {
		return struct{}{}, c.next.Set(ctx, key, roadmap, ttl)
	})
	return err
}

// State reports the read breaker state, mostly for tests and health output.
func (c *BreakerCache) State() gobreaker.State {
	return c.reads.State()
}

var _ domain.Cache = (*BreakerCache)(nil)
