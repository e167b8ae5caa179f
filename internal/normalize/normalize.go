// Package normalize owns the provider-agnostic field hygiene: mapping
// free-text provider categories and levels into the canonical vocabulary,
// scaling provider-native popularity metrics to 0-1, and dropping malformed
// records before they reach dedup/ranking.
package normalize

import (
	"math"
	"strings"

	"course-discovery/internal/domain"
)

// CategoryGeneral is the fallback for provider categories we cannot map.
const CategoryGeneral = "general"

// categorySynonyms maps lowercased provider category strings to canonical
// tags. Fixed at build time; unmapped values fall back to CategoryGeneral
// rather than erroring.
var categorySynonyms = map[string]string{
	"web development":      "web-development",
	"web-development":      "web-development",
	"webdev":               "web-development",
	"web dev":              "web-development",
	"frontend":             "web-development",
	"front-end":            "web-development",
	"backend":              "web-development",
	"full stack":           "web-development",
	"development":          "web-development",
	"programming":          "web-development",
	"programming languages": "web-development",
	"software engineering": "web-development",

	"data science":     "data-science",
	"data-science":     "data-science",
	"machine learning": "data-science",
	"ml":               "data-science",
	"ai":               "data-science",
	"artificial intelligence": "data-science",
	"data analysis":           "data-science",
	"analytics":               "data-science",

	"mobile development": "mobile-development",
	"mobile":             "mobile-development",
	"android":            "mobile-development",
	"ios":                "mobile-development",

	"cloud computing": "cloud-computing",
	"cloud":           "cloud-computing",
	"devops":          "cloud-computing",
	"aws":             "cloud-computing",

	"cybersecurity": "cybersecurity",
	"security":      "cybersecurity",
	"it & software": "cybersecurity",

	"design":        "design",
	"ui/ux":         "design",
	"ux design":     "design",
	"graphic design": "design",

	"business": "business",
	"finance":  "finance",
	"finance & accounting": "finance",
	"marketing":            "marketing",
	"digital marketing":    "marketing",
}

// Category maps a raw provider category to its canonical tag.
func Category(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return CategoryGeneral
	}
	if canon, ok := categorySynonyms[key]; ok {
		return canon
	}
	return CategoryGeneral
}

// LevelFrom maps provider level strings ("Beginner Level", "EXPERT", ...) to
// the canonical level enum.
func LevelFrom(raw string) domain.Level {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return domain.LevelUnknown
	case strings.Contains(s, "beginner"), strings.Contains(s, "intro"), strings.Contains(s, "basic"):
		return domain.LevelBeginner
	case strings.Contains(s, "intermediate"):
		return domain.LevelIntermediate
	case strings.Contains(s, "advanced"), strings.Contains(s, "expert"):
		return domain.LevelAdvanced
	}
	return domain.LevelUnknown
}

// LogScale squashes a provider-native count (views, enrollments) into 0-1
// on a log scale against a per-provider ceiling, so a 10M-view video and a
// 100k-enrollment course land in the same ballpark instead of the raw view
// count drowning everything.
func LogScale(value, ceiling float64) float64 {
	if value <= 0 || ceiling <= 1 {
		return 0
	}
	s := math.Log1p(value) / math.Log1p(ceiling)
	if s > 1 {
		return 1
	}
	return s
}

// Clean trims text fields and enforces the record invariants. The second
// return is false when the record is malformed and must be dropped: a single
// bad provider record never fails the batch.
func Clean(c domain.Course) (domain.Course, bool) {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Category = strings.TrimSpace(c.Category)

	if c.ID == "" || c.Title == "" || c.URL == "" {
		return c, false
	}
	if c.Price < 0 {
		return c, false
	}
	if c.Rating != nil && (*c.Rating < 0 || *c.Rating > 5) {
		c.Rating = nil
	}
	if c.DurationMinutes != nil && *c.DurationMinutes < 0 {
		c.DurationMinutes = nil
	}
	if c.Popularity < 0 {
		c.Popularity = 0
	} else if c.Popularity > 1 {
		c.Popularity = 1
	}
	if c.Category == "" {
		c.Category = CategoryGeneral
	}
	if c.Level == "" {
		c.Level = domain.LevelUnknown
	}
	return c, true
}

// Courses applies Clean over a batch, dropping malformed records.
func Courses(in []domain.Course) []domain.Course {
	out := make([]domain.Course, 0, len(in))
	for _, c := range in {
		if cleaned, ok := Clean(c); ok {
			out = append(out, cleaned)
		}
	}
	return out
}

// Tokens splits text into lowercased word tokens with punctuation stripped.
// Shared by the deduplicator and the ranker so both sides agree on what a
// "word" is.
func Tokens(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// TokenSet is Tokens as a set.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(s) {
		set[tok] = struct{}{}
	}
	return set
}
