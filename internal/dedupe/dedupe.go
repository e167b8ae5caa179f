// Package dedupe collapses course records that describe the same learning
// resource, either within one provider (pagination overlap) or across
// providers (the same course listed on both platforms).
package dedupe

import (
	"strings"

	"course-discovery/internal/domain"
	"course-discovery/internal/normalize"
)

// jaccardThreshold is deliberately conservative: merging two distinct
// courses is much worse than keeping a near-duplicate, so only titles
// sharing >= 80% of their word tokens are candidates for a cross-provider
// merge (and the categories must match too).
const jaccardThreshold = 0.8

// providerTokens are stripped from titles before comparison so
// "Go Course | Udemy" and "Go Course" collide.
var providerTokens = map[string]struct{}{
	string(domain.ProviderYouTube): {},
	string(domain.ProviderUdemy):   {},
}

// Dedupe returns the survivors of in with duplicates collapsed, preserving
// the relative order of survivors. Same-provider duplicates keep the first
// occurrence; cross-provider duplicates keep the record with the higher
// popularity signal, ties going to the earlier publish date.
func Dedupe(in []domain.Course) []domain.Course {
	if len(in) < 2 {
		return in
	}

	// Same-provider pass: exact collapse on the normalized title key.
	seen := make(map[string]struct{}, len(in))
	candidates := make([]domain.Course, 0, len(in))
	for _, c := range in {
		key := string(c.Provider) + "\x00" + titleKey(c.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, c)
	}

	// Cross-provider pass: fuzzy title match + category equality.
	kept := make([]domain.Course, 0, len(candidates))
	tokens := make([]map[string]struct{}, 0, len(candidates))
	for _, c := range candidates {
		ctoks := titleTokenSet(c.Title)

		// Collect every kept record this candidate duplicates. Resolving
		// all matches at once keeps the result stable under a second pass.
		matched := make([]int, 0, 1)
		for i, k := range kept {
			if k.Provider == c.Provider || k.Category != c.Category {
				continue
			}
			if jaccard(ctoks, tokens[i]) >= jaccardThreshold {
				matched = append(matched, i)
			}
		}

		if len(matched) == 0 {
			kept = append(kept, c)
			tokens = append(tokens, ctoks)
			continue
		}

		winner, wtoks := c, ctoks
		for _, i := range matched {
			if beats(kept[i], winner) {
				winner, wtoks = kept[i], tokens[i]
			}
		}

		// Winner takes the earliest matched slot; later matched slots drop.
		kept[matched[0]], tokens[matched[0]] = winner, wtoks
		for n := len(matched) - 1; n >= 1; n-- {
			i := matched[n]
			kept = append(kept[:i], kept[i+1:]...)
			tokens = append(tokens[:i], tokens[i+1:]...)
		}
	}

	return kept
}

// beats reports whether a should survive over b when the two are duplicates.
func beats(a, b domain.Course) bool {
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	if a.PublishedAt.IsZero() != b.PublishedAt.IsZero() {
		return !a.PublishedAt.IsZero()
	}
	// Equal dates keep the first-seen record.
	return !b.PublishedAt.Before(a.PublishedAt)
}

func titleTokens(title string) []string {
	toks := normalize.Tokens(title)
	out := toks[:0]
	for _, t := range toks {
		if _, skip := providerTokens[t]; skip {
			continue
		}
		out = append(out, t)
	}
	return out
}

func titleKey(title string) string {
	return strings.Join(titleTokens(title), " ")
}

func titleTokenSet(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range titleTokens(title) {
		set[t] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
