package courses

import (
	"sort"
	"strings"

	"course-discovery/internal/domain"
)

// PriceFilter narrows results by cost. Empty means no filtering.
type PriceFilter string

const (
	PriceAny  PriceFilter = ""
	PriceFree PriceFilter = "free"
	PricePaid PriceFilter = "paid"
)

// SearchParams are the inputs of the search operation. Query or Category
// must be present; everything else narrows the result.
type SearchParams struct {
	Query    string `validate:"required_without=Category"`
	Category string
	// Platform restricts fan-out to one provider ("youtube", "udemy").
	Platform string       `validate:"omitempty,oneof=youtube udemy"`
	Level    domain.Level `validate:"omitempty,oneof=beginner intermediate advanced unknown"`
	Price    PriceFilter  `validate:"omitempty,oneof=free paid"`
}

// cacheKey canonicalizes operation parameters so equivalent requests share
// a cache entry regardless of argument casing or set ordering.
func cacheKey(op string, parts ...string) string {
	norm := make([]string, 0, len(parts)+1)
	norm = append(norm, op)
	for _, p := range parts {
		norm = append(norm, strings.ToLower(strings.TrimSpace(p)))
	}
	return strings.Join(norm, "|")
}

// canonicalSet lowercases, sorts and joins a string set for key building.
func canonicalSet(vals []string) string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
