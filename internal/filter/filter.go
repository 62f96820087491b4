// Package filter provides pure filter functions for stories.
// All functions are simple: []Story in, []Story out. No side effects, and the
// input slice is never modified.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/hntop/internal/story"
)

// SortMode selects the ordering of the derived view.
type SortMode string

const (
	// SortPoints orders by descending points, ties keep fetch order.
	SortPoints SortMode = "points"
	// SortFetch keeps the order the API returned.
	SortFetch SortMode = "fetch"
)

// ParseSortMode maps a flag or config value to a SortMode. Unknown values
// fall back to SortPoints.
func ParseSortMode(s string) SortMode {
	if strings.EqualFold(strings.TrimSpace(s), string(SortFetch)) {
		return SortFetch
	}
	return SortPoints
}

// Toggle returns the other sort mode.
func (m SortMode) Toggle() SortMode {
	if m == SortFetch {
		return SortPoints
	}
	return SortFetch
}

// ByAge removes stories created before now-maxAge.
func ByAge(stories []story.Story, maxAge time.Duration, now time.Time) []story.Story {
	if len(stories) == 0 {
		return []story.Story{}
	}

	cutoff := now.Add(-maxAge)
	result := make([]story.Story, 0, len(stories))

	for _, s := range stories {
		if !s.CreatedAt.Before(cutoff) {
			result = append(result, s)
		}
	}

	return result
}

// ByTitle keeps stories whose title contains query, case-insensitively.
// An empty query matches everything.
func ByTitle(stories []story.Story, query string) []story.Story {
	if len(stories) == 0 {
		return []story.Story{}
	}

	needle := strings.ToLower(query)
	result := make([]story.Story, 0, len(stories))

	for _, s := range stories {
		if needle == "" || strings.Contains(strings.ToLower(s.Title), needle) {
			result = append(result, s)
		}
	}

	return result
}

// Exclude drops stories whose key (per mode) is set in excluded. The story ID
// is always checked too, so an ID recorded before the story was fetched still
// hides it when keying by URL.
func Exclude(stories []story.Story, excluded map[string]bool, mode story.KeyMode) []story.Story {
	if len(stories) == 0 {
		return []story.Story{}
	}

	result := make([]story.Story, 0, len(stories))
	for _, s := range stories {
		if excluded[mode.Key(s)] || excluded[s.ID] {
			continue
		}
		result = append(result, s)
	}

	return result
}

// DedupByID removes stories with a repeated ID. First occurrence wins.
func DedupByID(stories []story.Story) []story.Story {
	if len(stories) == 0 {
		return []story.Story{}
	}

	seen := make(map[string]bool, len(stories))
	result := make([]story.Story, 0, len(stories))

	for _, s := range stories {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		result = append(result, s)
	}

	return result
}

// SortByPoints returns a copy ordered by descending points.
// The sort is stable: equal points keep their input order.
func SortByPoints(stories []story.Story) []story.Story {
	result := make([]story.Story, len(stories))
	copy(result, stories)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Points > result[j].Points
	})

	return result
}

// Derive computes the displayed list: raw stories minus excluded keys, filtered
// by title query, then ordered by mode.
func Derive(raw []story.Story, excluded map[string]bool, query string, sortMode SortMode, keyMode story.KeyMode) []story.Story {
	result := Exclude(raw, excluded, keyMode)
	result = ByTitle(result, query)
	if sortMode == SortFetch {
		return result
	}
	return SortByPoints(result)
}
