package fetch

import (
	"strings"
	"time"
)

// Window is the default age limit for fetched stories.
const Window = 7 * 24 * time.Hour

// Endpoints of the Algolia HN search API.
const (
	EndpointRelevance = "search"
	EndpointRecency   = "search_by_date"
)

// Profile describes one query against the search API.
type Profile struct {
	Name        string
	Endpoint    string        // EndpointRelevance or EndpointRecency
	MinPoints   int           // points >= MinPoints; 0 disables the filter
	Window      time.Duration // created_at >= now - Window
	HitsPerPage int
	MaxPages    int // pages fetched by Fetch; at least 1
}

// ProfileTop ranks by relevance and takes one large page of stories with
// at least 10 points.
var ProfileTop = Profile{
	Name:        "top",
	Endpoint:    EndpointRelevance,
	MinPoints:   10,
	Window:      Window,
	HitsPerPage: 1000,
	MaxPages:    1,
}

// ProfileRecent walks the newest stories in pages of 30.
var ProfileRecent = Profile{
	Name:        "recent",
	Endpoint:    EndpointRecency,
	MinPoints:   0,
	Window:      Window,
	HitsPerPage: 30,
	MaxPages:    5,
}

// ProfileByName returns the built-in profile with the given name.
// Unknown names return ProfileTop and false.
func ProfileByName(name string) (Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top", "":
		return ProfileTop, true
	case "recent":
		return ProfileRecent, true
	default:
		return ProfileTop, false
	}
}

// pages returns the number of pages Fetch should request.
func (p Profile) pages() int {
	if p.MaxPages < 1 {
		return 1
	}
	return p.MaxPages
}
