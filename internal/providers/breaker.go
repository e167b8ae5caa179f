package providers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"course-discovery/internal/domain"
)

// ErrCircuitOpen is returned while a provider's breaker is open. The facade
// counts it as "this provider errored", same as a timeout.
var ErrCircuitOpen = errors.New("provider circuit open")

// breakerProvider wraps a Provider with a circuit breaker so a flapping
// upstream gets short-circuited instead of burning the per-request timeout
// on every single aggregation call.
type breakerProvider struct {
	inner  Provider
	cb     *gobreaker.CircuitBreaker[[]domain.Course]
	logger zerolog.Logger
}

// WithBreaker decorates p with a circuit breaker. The breaker opens after a
// 60% failure rate over at least 5 requests within the measurement window,
// and probes again after 30 seconds.
func WithBreaker(p Provider, logger zerolog.Logger) Provider {
	logger = logger.With().Str("provider", p.Name()).Logger()

	cb := gobreaker.NewCircuitBreaker[[]domain.Course](gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &breakerProvider{inner: p, cb: cb, logger: logger}
}

func (b *breakerProvider) Name() string { return b.inner.Name() }

func (b *breakerProvider) Fetch(ctx context.Context, q Query) ([]domain.Course, error) {
	out, err := b.cb.Execute(func() ([]domain.Course, error) {
		return b.inner.Fetch(ctx, q)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return out, nil
}
