// Package rank orders candidate course sets against a request context.
// Every mode composes a single score in [0,1] per course; the sort and
// tie-break chain never change, only the composition.
package rank

import (
	"sort"
	"strings"
	"time"

	"course-discovery/internal/domain"
	"course-discovery/internal/normalize"
)

// Weights holds the scoring constants. They are a starting configuration
// balancing relevance, quality and popularity; tune here, not in the
// scoring code.
type Weights struct {
	SearchText       float64
	SearchRating     float64
	SearchPopularity float64

	TrendPopularity  float64
	TrendRecency     float64
	TrendingLookback time.Duration

	ProfileOverlap    float64
	ProfileLevel      float64
	ProfileRating     float64
	ProfilePopularity float64
}

// DefaultWeights returns the shipped scoring configuration.
func DefaultWeights() Weights {
	return Weights{
		SearchText:       0.6,
		SearchRating:     0.2,
		SearchPopularity: 0.2,

		TrendPopularity:  0.6,
		TrendRecency:     0.4,
		TrendingLookback: 90 * 24 * time.Hour,

		ProfileOverlap:    0.5,
		ProfileLevel:      0.2,
		ProfileRating:     0.15,
		ProfilePopularity: 0.15,
	}
}

type mode int

const (
	modeSearch mode = iota
	modeTrending
	modePersonalized
)

// Context is one ranking request: a mode plus the inputs its formula needs.
type Context struct {
	mode    mode
	query   string
	profile domain.Profile
	now     time.Time
}

// ForSearch ranks by text relevance against the query.
func ForSearch(query string, now time.Time) Context {
	return Context{mode: modeSearch, query: query, now: now}
}

// ForTrending ranks by popularity and recency.
func ForTrending(now time.Time) Context {
	return Context{mode: modeTrending, now: now}
}

// ForProfile ranks by overlap with the user's skills, interests and level.
func ForProfile(p domain.Profile, now time.Time) Context {
	return Context{mode: modePersonalized, profile: p, now: now}
}

// Rank returns a new slice ordered by descending score. Ties break by
// rating, then publish date (newer first), then ID so repeated calls over
// the same input always produce the same order.
func Rank(in []domain.Course, ctx Context, w Weights) []domain.Course {
	type scored struct {
		c domain.Course
		s float64
	}

	list := make([]scored, len(in))
	for i, c := range in {
		list[i] = scored{c: c, s: Score(c, ctx, w)}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].s != list[j].s {
			return list[i].s > list[j].s
		}
		ri, rj := ratingOrMinus(list[i].c), ratingOrMinus(list[j].c)
		if ri != rj {
			return ri > rj
		}
		if !list[i].c.PublishedAt.Equal(list[j].c.PublishedAt) {
			return list[i].c.PublishedAt.After(list[j].c.PublishedAt)
		}
		return list[i].c.ID < list[j].c.ID
	})

	out := make([]domain.Course, len(list))
	for i, s := range list {
		out[i] = s.c
	}
	return out
}

// Cap truncates a ranked list to at most n entries. It must only ever be
// applied after Rank, so the cap keeps the top-N by score rather than an
// arbitrary prefix of provider order.
func Cap(in []domain.Course, n int) []domain.Course {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}

// Score computes the composite score in [0,1] for one course.
func Score(c domain.Course, ctx Context, w Weights) float64 {
	switch ctx.mode {
	case modeTrending:
		return w.TrendPopularity*c.Popularity + w.TrendRecency*recency(c, ctx.now, w.TrendingLookback)
	case modePersonalized:
		return w.ProfileOverlap*profileOverlap(c, ctx.profile) +
			w.ProfileLevel*levelMatch(c.Level, ctx.profile.ExperienceLevel) +
			w.ProfileRating*ratingScore(c) +
			w.ProfilePopularity*c.Popularity
	default:
		return w.SearchText*textMatch(c, ctx.query) +
			w.SearchRating*ratingScore(c) +
			w.SearchPopularity*c.Popularity
	}
}

// textMatch is the fraction of query tokens present in title+description.
func textMatch(c domain.Course, query string) float64 {
	qtoks := normalize.Tokens(query)
	if len(qtoks) == 0 {
		return 0
	}
	doc := normalize.TokenSet(c.Title + " " + c.Description)
	hits := 0
	for _, q := range qtoks {
		if _, ok := doc[q]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(qtoks))
}

// profileOverlap is the fraction of profile tokens (skills ∪ interests)
// found among the course's category and title tokens.
func profileOverlap(c domain.Course, p domain.Profile) float64 {
	want := make(map[string]struct{})
	for _, s := range append(append([]string{}, p.Skills...), p.Interests...) {
		for _, tok := range normalize.Tokens(s) {
			want[tok] = struct{}{}
		}
	}
	if len(want) == 0 {
		return 0
	}

	have := normalize.TokenSet(c.Title + " " + strings.ReplaceAll(c.Category, "-", " "))
	hits := 0
	for tok := range want {
		if _, ok := have[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

// levelMatch gives full credit for an exact match or an unknown course
// level, half for one level apart, nothing beyond that.
func levelMatch(course, experience domain.Level) float64 {
	switch course.Distance(experience) {
	case 0:
		return 1
	case 1:
		return 0.5
	case -1:
		// Either side unknown: don't punish the course for missing data.
		return 1
	}
	return 0
}

func ratingScore(c domain.Course) float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating / 5
}

// recency decays linearly from 1 (published now) to 0 at the lookback
// horizon. Records without a publish date score 0.
func recency(c domain.Course, now time.Time, lookback time.Duration) float64 {
	if c.PublishedAt.IsZero() || lookback <= 0 {
		return 0
	}
	age := now.Sub(c.PublishedAt)
	if age < 0 {
		age = 0
	}
	if age >= lookback {
		return 0
	}
	return 1 - float64(age)/float64(lookback)
}

func ratingOrMinus(c domain.Course) float64 {
	if c.Rating == nil {
		return -1
	}
	return *c.Rating
}
