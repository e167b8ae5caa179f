package courses

import "errors"

var (
	// ErrInvalidInput is returned before any network call when the caller's
	// parameters cannot drive an aggregation (no query and no category, an
	// empty personalization profile, an unknown platform).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable means every applicable provider errored and nothing
	// was fetched. It is deliberately distinguishable from an empty success
	// so callers can render "try again" instead of "no courses found".
	ErrUnavailable = errors.New("course providers temporarily unavailable")
)
