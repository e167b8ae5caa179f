// Package providers defines the contract every content source adapter
// implements, plus resilience decorators shared by all of them.
package providers

import (
	"context"

	"course-discovery/internal/domain"
)

// Query is the provider-agnostic fetch request. At least one of Text or
// Category is normally set; with both empty the adapter falls back to its
// provider-defined "trending" default.
type Query struct {
	Text     string
	Category string
}

// Provider fetches listings from one external content source and maps them
// into the canonical course schema. Implementations are stateless beyond
// their HTTP client and rate limiter; provider quirks (pagination, auth,
// field names) never leak past this interface.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]domain.Course, error)
}
