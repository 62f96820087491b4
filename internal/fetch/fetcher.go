// Package fetch retrieves Hacker News stories from the Algolia search API.
//
// A Profile describes the query (relevance or recency endpoint, points floor,
// age window, page size). Fetcher performs the HTTP requests and converts the
// hits into story.Story values; it does not store anything.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abelbrown/hntop/internal/filter"
	"github.com/abelbrown/hntop/internal/story"
)

// DefaultBaseURL is the public Algolia HN API root.
const DefaultBaseURL = "https://hn.algolia.com/api/v1"

// maxConcurrentPages limits parallel page requests within one Fetch.
const maxConcurrentPages = 3

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

// Page is one page of search results.
type Page struct {
	Stories []story.Story
	Page    int
	NbPages int
	HasMore bool
}

// Fetcher retrieves stories from the search API.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	now       func() time.Time
	logger    *log.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at a different API root (tests, mirrors).
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = u }
}

// WithLimiter replaces the request pacing limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithClock sets the time source used for the age window.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher with the given HTTP client timeout.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		baseURL:   DefaultBaseURL,
		userAgent: "hntop/0.1 (+https://github.com/abelbrown/hntop)",
		limiter:   rate.NewLimiter(rate.Every(250*time.Millisecond), 2),
		now:       time.Now,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// algoliaResponse is the subset of the search response we consume.
type algoliaResponse struct {
	Hits        []algoliaHit `json:"hits"`
	Page        int          `json:"page"`
	NbPages     int          `json:"nbPages"`
	HitsPerPage int          `json:"hitsPerPage"`
}

// algoliaHit is a single story record. url, points and num_comments may be null.
type algoliaHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Points      int    `json:"points"`
	Author      string `json:"author"`
	CreatedAt   string `json:"created_at"`
	CreatedAtI  int64  `json:"created_at_i"`
	NumComments int    `json:"num_comments"`
}

// QueryURL builds the request URL for page of profile p.
func (f *Fetcher) QueryURL(p Profile, page int) string {
	window := p.Window
	if window <= 0 {
		window = Window
	}
	since := f.now().Add(-window).Unix()

	numeric := "created_at_i>=" + strconv.FormatInt(since, 10)
	if p.MinPoints > 0 {
		numeric += ",points>=" + strconv.Itoa(p.MinPoints)
	}

	q := url.Values{}
	q.Set("tags", "story")
	q.Set("numericFilters", numeric)
	if p.HitsPerPage > 0 {
		q.Set("hitsPerPage", strconv.Itoa(p.HitsPerPage))
	}
	q.Set("page", strconv.Itoa(page))

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = EndpointRelevance
	}
	return f.baseURL + "/" + endpoint + "?" + q.Encode()
}

// FetchPage retrieves a single page of results.
//
// The function respects context cancellation and will return early
// if the context is cancelled.
func (f *Fetcher) FetchPage(ctx context.Context, p Profile, page int) (Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}

	reqURL := f.QueryURL(p, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch stories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var body algoliaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Page{}, fmt.Errorf("failed to decode response: %w", err)
	}

	stories := make([]story.Story, 0, len(body.Hits))
	for _, hit := range body.Hits {
		stories = append(stories, convertHit(hit))
	}

	f.logger.Debug("page fetched", "profile", p.Name, "page", page, "hits", len(stories),
		"pages", body.NbPages, "dur", time.Since(start))

	return Page{
		Stories: stories,
		Page:    body.Page,
		NbPages: body.NbPages,
		HasMore: body.Page+1 < body.NbPages,
	}, nil
}

// Fetch retrieves up to p.MaxPages pages and returns the stories in API order,
// de-duplicated by ID and limited to the profile's age window. Any page
// failure fails the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, p Profile) ([]story.Story, error) {
	first, err := f.FetchPage(ctx, p, 0)
	if err != nil {
		return nil, err
	}

	total := p.pages()
	if first.NbPages < total {
		total = first.NbPages
	}

	pages := make([][]story.Story, max(total, 1))
	pages[0] = first.Stories

	if total > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentPages)
		for i := 1; i < total; i++ {
			i := i
			g.Go(func() error {
				pg, err := f.FetchPage(gctx, p, i)
				if err != nil {
					return fmt.Errorf("page %d: %w", i, err)
				}
				pages[i] = pg.Stories
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var all []story.Story
	for _, pg := range pages {
		all = append(all, pg...)
	}

	window := p.Window
	if window <= 0 {
		window = Window
	}
	all = filter.DedupByID(all)
	all = filter.ByAge(all, window, f.now())

	f.logger.Info("fetch complete", "profile", p.Name, "pages", total, "stories", len(all))
	return all, nil
}

// convertHit converts an API hit to a story.Story.
func convertHit(hit algoliaHit) story.Story {
	created, err := time.Parse(time.RFC3339, hit.CreatedAt)
	if err != nil {
		created = time.Unix(hit.CreatedAtI, 0).UTC()
	}

	points := hit.Points
	if points < 0 {
		points = 0
	}

	return story.Story{
		ID:          hit.ObjectID,
		Title:       hit.Title,
		URL:         hit.URL,
		Points:      points,
		Author:      hit.Author,
		CreatedAt:   created,
		NumComments: hit.NumComments,
	}
}
