package domain

import "time"

// Provider identifies the upstream source of a course record.
type Provider string

const (
	ProviderYouTube Provider = "youtube"
	ProviderUdemy   Provider = "udemy"
)

// Level is the normalized difficulty of a course.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelUnknown      Level = "unknown"
)

// ordinal returns the position of a level on the beginner→advanced axis,
// or -1 for unknown.
func (l Level) ordinal() int {
	switch l {
	case LevelBeginner:
		return 0
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	}
	return -1
}

// Distance returns how many steps apart two known levels are.
// If either side is unknown it returns -1 and the caller decides.
func (l Level) Distance(other Level) int {
	a, b := l.ordinal(), other.ordinal()
	if a < 0 || b < 0 {
		return -1
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}

// Course is the canonical representation of a learning resource inside this
// service. All providers map into this model; everything downstream of the
// adapters (dedup, ranking, the facade, route handlers) only ever sees it.
type Course struct {
	// ID is stable per (provider, native id) pair, e.g. "youtube:dQw4w9WgXcQ".
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Provider    Provider `json:"provider"`
	Category    string   `json:"category"` // canonical tag, "general" when unmapped
	Level       Level    `json:"level"`

	// Price in USD. 0 means free.
	Price float64 `json:"price"`

	// Rating is nil when the provider has no rating concept (video views are
	// not ratings), otherwise 0-5.
	Rating *float64 `json:"rating,omitempty"`

	// DurationMinutes is nil when unknown. Zero is a legal duration and must
	// not be conflated with "we don't know".
	DurationMinutes *int `json:"durationMinutes,omitempty"`

	// Popularity is the provider-native signal (view count, enrollments)
	// log-normalized to 0-1 per provider, so cross-provider comparison is
	// not dominated by scale differences.
	Popularity float64 `json:"popularity"`

	PublishedAt time.Time `json:"publishedAt"`
	URL         string    `json:"url"`
}

// IsFree reports whether the course costs nothing.
func (c Course) IsFree() bool { return c.Price == 0 }
