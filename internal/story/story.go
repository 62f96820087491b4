// Package story defines the Hacker News story record shared by the fetcher,
// the view model and the UI.
package story

import (
	"net/url"
	"strings"
	"time"
)

// DiscussionBase is the fixed prefix of a story's comment thread URL.
const DiscussionBase = "https://news.ycombinator.com/item?id="

// Story is a single item returned by the search API. Immutable once fetched.
type Story struct {
	ID          string // Algolia objectID
	Title       string
	URL         string // empty for text posts (Ask HN, etc.)
	Points      int
	Author      string
	CreatedAt   time.Time
	NumComments int
}

// IsTextPost reports whether the story has no external link.
func (s Story) IsTextPost() bool {
	return s.URL == ""
}

// DiscussionURL returns the Hacker News comment thread for the story.
func (s Story) DiscussionURL() string {
	return DiscussionBase + s.ID
}

// Link returns the URL to open for the story: the article when there is one,
// otherwise the discussion thread.
func (s Story) Link() string {
	if s.URL != "" {
		return s.URL
	}
	return s.DiscussionURL()
}

// Domain returns the host of the story URL without a leading "www.".
// Empty for text posts or unparseable URLs.
func (s Story) Domain() string {
	if s.URL == "" {
		return ""
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// KeyMode selects which story attribute identifies it in the dismissed and
// opened sets.
type KeyMode string

const (
	KeyByID  KeyMode = "id"
	KeyByURL KeyMode = "url"
)

// ParseKeyMode maps a config string to a KeyMode. Unknown values fall back to KeyByID.
func ParseKeyMode(s string) KeyMode {
	if strings.EqualFold(strings.TrimSpace(s), string(KeyByURL)) {
		return KeyByURL
	}
	return KeyByID
}

// Key returns the identity of s under mode. Text posts have no URL, so they
// are always keyed by ID.
func (m KeyMode) Key(s Story) string {
	if m == KeyByURL && s.URL != "" {
		return s.URL
	}
	return s.ID
}
