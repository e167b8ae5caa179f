package domain

// Profile is the per-call personalization input. It exists only for the
// duration of one recommendation request and is never stored.
type Profile struct {
	Skills          []string `json:"skills"`
	Interests       []string `json:"interests"`
	ExperienceLevel Level    `json:"experienceLevel"`
}

// Empty reports whether the profile carries nothing to personalize on.
func (p Profile) Empty() bool {
	return len(p.Skills) == 0 && len(p.Interests) == 0
}
