// Package courses is the aggregation facade: the single entry point the
// route handlers consume. Each operation fans out to the applicable
// provider adapters concurrently, merges and deduplicates what came back,
// applies the caller's filters, ranks, caps and returns.
package courses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"course-discovery/internal/cache"
	"course-discovery/internal/concurrency"
	"course-discovery/internal/dedupe"
	"course-discovery/internal/domain"
	"course-discovery/internal/normalize"
	"course-discovery/internal/providers"
	"course-discovery/internal/rank"
)

// Options tune one Service instance.
type Options struct {
	// FetchTimeout bounds each provider call. The whole operation finishes
	// after the slowest adapter returns or times out, never later.
	FetchTimeout time.Duration
	MaxResults   int
	CacheTTL     time.Duration
	CacheSize    int
	Weights      rank.Weights

	// Now is injectable for deterministic ranking in tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 8 * time.Second
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 50
	}
	if o.Weights == (rank.Weights{}) {
		o.Weights = rank.DefaultWeights()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service orchestrates the aggregation pipeline. It holds no mutable state
// beyond the short-TTL result cache; all course data is fetched fresh from
// upstream per cache window.
type Service struct {
	providers []providers.Provider
	opts      Options
	cache     *cache.ResultCache
	group     singleflight.Group
	validate  *validator.Validate
	logger    zerolog.Logger
}

// New builds a Service over the given provider adapters.
func New(ps []providers.Provider, logger zerolog.Logger, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		providers: ps,
		opts:      opts,
		cache:     cache.New(opts.CacheSize, opts.CacheTTL),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With().Str("component", "courses").Logger(),
	}
}

// Search returns courses matching a free-text query and/or category,
// ranked by text relevance, rating and popularity.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]domain.Course, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	applicable, err := s.applicable(p.Platform)
	if err != nil {
		return nil, err
	}

	category := ""
	if p.Category != "" {
		category = normalize.Category(p.Category)
	}

	key := cacheKey("search", p.Query, category, p.Platform, string(p.Level), string(p.Price))
	return s.run(ctx, key, applicable, providers.Query{Text: p.Query, Category: category},
		func(in []domain.Course) []domain.Course {
			in = filterLevel(in, p.Level)
			in = filterCategory(in, category)
			in = filterPrice(in, p.Price)
			return rank.Rank(in, rank.ForSearch(p.Query, s.opts.Now()), s.opts.Weights)
		})
}

// Trending returns what is popular and recent, optionally scoped to a
// category. With no category each provider serves its own trending default.
func (s *Service) Trending(ctx context.Context, category string) ([]domain.Course, error) {
	canonical := ""
	if category != "" {
		canonical = normalize.Category(category)
	}

	key := cacheKey("trending", canonical)
	return s.run(ctx, key, s.providers, providers.Query{Category: canonical},
		func(in []domain.Course) []domain.Course {
			in = filterCategory(in, canonical)
			return rank.Rank(in, rank.ForTrending(s.opts.Now()), s.opts.Weights)
		})
}

// Free returns only no-cost courses; ranked like a search when a query is
// given, like trending otherwise.
func (s *Service) Free(ctx context.Context, query string) ([]domain.Course, error) {
	key := cacheKey("free", query)
	return s.run(ctx, key, s.providers, providers.Query{Text: query},
		func(in []domain.Course) []domain.Course {
			in = filterPrice(in, PriceFree)
			rctx := rank.ForTrending(s.opts.Now())
			if strings.TrimSpace(query) != "" {
				rctx = rank.ForSearch(query, s.opts.Now())
			}
			return rank.Rank(in, rctx, s.opts.Weights)
		})
}

// Recommendations ranks courses against the user's skills, interests and
// experience level. The profile lives only for this call.
func (s *Service) Recommendations(ctx context.Context, profile domain.Profile) ([]domain.Course, error) {
	if profile.Empty() {
		return nil, fmt.Errorf("%w: profile needs at least one skill or interest", ErrInvalidInput)
	}
	if profile.ExperienceLevel == "" {
		profile.ExperienceLevel = domain.LevelUnknown
	}

	key := cacheKey("personalized",
		canonicalSet(profile.Skills), canonicalSet(profile.Interests), string(profile.ExperienceLevel))
	return s.run(ctx, key, s.providers, providers.Query{Text: profileQuery(profile)},
		func(in []domain.Course) []domain.Course {
			return rank.Rank(in, rank.ForProfile(profile, s.opts.Now()), s.opts.Weights)
		})
}

// run is the shared pipeline: cache lookup, singleflight-collapsed fan-out,
// hygiene, dedup, the operation's filter+rank step, cap, cache fill.
func (s *Service) run(
	ctx context.Context,
	key string,
	applicable []providers.Provider,
	q providers.Query,
	finish func([]domain.Course) []domain.Course,
) ([]domain.Course, error) {
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("key", key).Msg("cache hit")
		return cached, nil
	}

	// Concurrent identical requests share one upstream fan-out.
	ch := s.group.DoChan(key, func() (any, error) {
		merged, err := s.fanOut(ctx, applicable, q)
		if err != nil {
			return nil, err
		}
		out := rank.Cap(finish(dedupe.Dedupe(normalize.Courses(merged))), s.opts.MaxResults)
		s.cache.Add(key, out)
		return out, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Course), nil
	}
}

// fanOut queries every applicable provider concurrently. A provider error
// degrades to zero results from that provider; only when all of them
// errored with nothing fetched does the operation fail as unavailable.
func (s *Service) fanOut(ctx context.Context, ps []providers.Provider, q providers.Query) ([]domain.Course, error) {
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: no applicable providers", ErrInvalidInput)
	}

	results, errs := concurrency.ProcessParallel(ctx, ps, concurrency.DefaultOptions(),
		func(ctx context.Context, _ int, p providers.Provider) ([]domain.Course, error) {
			fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
			defer cancel()

			start := time.Now()
			out, err := p.Fetch(fctx, q)
			if err != nil {
				s.logger.Warn().Err(err).Str("provider", p.Name()).Msg("provider fetch failed")
				return nil, err
			}
			s.logger.Debug().
				Str("provider", p.Name()).
				Int("records", len(out)).
				Dur("took", time.Since(start)).
				Msg("provider fetch done")
			return out, nil
		})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []domain.Course
	failed := 0
	for i := range results {
		if errs[i] != nil {
			failed++
			continue
		}
		merged = append(merged, results[i]...)
	}

	if failed == len(ps) && len(merged) == 0 {
		return nil, ErrUnavailable
	}
	return merged, nil
}

// applicable resolves a platform filter to the provider fan-out set.
func (s *Service) applicable(platform string) ([]providers.Provider, error) {
	if platform == "" {
		return s.providers, nil
	}
	for _, p := range s.providers {
		if p.Name() == platform {
			return []providers.Provider{p}, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, platform)
}

func filterLevel(in []domain.Course, lvl domain.Level) []domain.Course {
	if lvl == "" {
		return in
	}
	return filter(in, func(c domain.Course) bool { return c.Level == lvl })
}

func filterCategory(in []domain.Course, category string) []domain.Course {
	if category == "" {
		return in
	}
	return filter(in, func(c domain.Course) bool { return c.Category == category })
}

func filterPrice(in []domain.Course, pf PriceFilter) []domain.Course {
	switch pf {
	case PriceFree:
		return filter(in, domain.Course.IsFree)
	case PricePaid:
		return filter(in, func(c domain.Course) bool { return !c.IsFree() })
	}
	return in
}

func filter(in []domain.Course, keep func(domain.Course) bool) []domain.Course {
	out := make([]domain.Course, 0, len(in))
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// profileQuery turns a profile into the upstream search text: interests
// first (they name topics), then skills, capped so the query stays sane.
func profileQuery(p domain.Profile) string {
	terms := make([]string, 0, 5)
	for _, t := range append(append([]string{}, p.Interests...), p.Skills...) {
		t = strings.TrimSpace(strings.ReplaceAll(t, "-", " "))
		if t == "" {
			continue
		}
		terms = append(terms, t)
		if len(terms) == 5 {
			break
		}
	}
	return strings.Join(terms, " ")
}
