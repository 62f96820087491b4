package fetch

import (
	"context"

	"github.com/abelbrown/hntop/internal/story"
)

// ProfileSource binds a Fetcher to one Profile so it can serve as the view
// model's story source.
type ProfileSource struct {
	Fetcher *Fetcher
	Profile Profile
}

// Fetch runs the bound profile.
func (s ProfileSource) Fetch(ctx context.Context) ([]story.Story, error) {
	return s.Fetcher.Fetch(ctx, s.Profile)
}
