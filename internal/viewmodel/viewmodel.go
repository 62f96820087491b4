// Package viewmodel holds the story list state behind the UI: the fetched
// stories, the dismissed and opened sets, the search text, and the derived
// list that is actually displayed.
//
// A Model is owned by a single goroutine. The only asynchronous work is the
// initial fetch: Initialize returns a Pending func that the owner runs
// elsewhere and hands back to Resolve.
package viewmodel

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/hntop/internal/filter"
	"github.com/abelbrown/hntop/internal/story"
)

// Source supplies the raw story set. fetch.ProfileSource implements it.
type Source interface {
	Fetch(ctx context.Context) ([]story.Story, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]story.Story, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]story.Story, error) {
	return f(ctx)
}

// Prefs is the local preference store. store.Store and store.MemStore
// implement it.
type Prefs interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// deleter is implemented by stores that can drop a key outright.
type deleter interface {
	Delete(key string) error
}

// State is the lifecycle of the initial fetch.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Result is the outcome of a Pending fetch.
type Result struct {
	gen     uint64
	Stories []story.Story
	Err     error
}

// Pending runs the fetch started by Initialize. It touches only the source,
// so it may run on any goroutine.
type Pending func() Result

// Option configures a Model.
type Option func(*Model)

// WithKeyMode selects how stories are identified in the persisted sets.
func WithKeyMode(m story.KeyMode) Option {
	return func(vm *Model) { vm.keyMode = m }
}

// WithSort sets the initial sort mode.
func WithSort(m filter.SortMode) Option {
	return func(vm *Model) { vm.sort = m }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *log.Logger) Option {
	return func(vm *Model) { vm.logger = l }
}

// Model is the story view model.
type Model struct {
	source  Source
	prefs   Prefs
	logger  *log.Logger
	keyMode story.KeyMode
	sort    filter.SortMode

	state  State
	err    error
	gen    uint64
	closed bool

	raw       []story.Story
	dismissed IDSet
	opened    IDSet
	search    string
	view      []story.Story
}

// New creates an uninitialized Model.
func New(source Source, prefs Prefs, opts ...Option) *Model {
	m := &Model{
		source:    source,
		prefs:     prefs,
		logger:    log.New(io.Discard),
		keyMode:   story.KeyByID,
		sort:      filter.SortPoints,
		dismissed: IDSet{},
		opened:    IDSet{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize loads the dismissed and opened sets from the store, enters the
// loading state and returns the fetch to run. Each call starts a new
// generation; results of earlier generations are discarded by Resolve.
// Calling it again after a failure is the manual retry. Keys already held in
// memory are kept even if they never reached the store.
func (m *Model) Initialize(ctx context.Context) Pending {
	m.LoadPrefs()

	m.gen++
	m.state = StateLoading
	m.err = nil
	m.recompute()

	gen := m.gen
	src := m.source
	return func() Result {
		stories, err := src.Fetch(ctx)
		return Result{gen: gen, Stories: stories, Err: err}
	}
}

// LoadPrefs reads the dismissed and opened sets from the store without
// fetching. Keys already held in memory are kept.
func (m *Model) LoadPrefs() {
	m.dismissed = union(m.loadSet(DismissedKey), m.dismissed)
	m.opened = union(m.loadSet(OpenedKey), m.opened)
	m.recompute()
}

// Resolve applies a completed fetch. It returns false, changing nothing, when
// r belongs to an earlier Initialize or the model has been closed.
func (m *Model) Resolve(r Result) bool {
	if m.closed || r.gen != m.gen || m.state != StateLoading {
		return false
	}

	if r.Err != nil {
		m.state = StateFailed
		m.err = r.Err
		m.raw = nil
		m.logger.Error("fetch failed", "err", r.Err)
	} else {
		m.state = StateReady
		m.err = nil
		m.raw = append([]story.Story(nil), r.Stories...)
		m.logger.Info("stories loaded", "count", len(r.Stories))
	}

	m.recompute()
	return true
}

// Load runs Initialize and its fetch on the calling goroutine and resolves
// the result. It returns the fetch error, if any.
func (m *Model) Load(ctx context.Context) error {
	pending := m.Initialize(ctx)
	m.Resolve(pending())
	return m.err
}

// Close marks the model as torn down. Outstanding fetch results are ignored.
func (m *Model) Close() {
	m.closed = true
}

// SetSearchText replaces the search text and recomputes the derived view.
func (m *Model) SetSearchText(text string) {
	if text == m.search {
		return
	}
	m.search = text
	m.recompute()
}

// SetSort changes the sort mode and recomputes the derived view.
func (m *Model) SetSort(mode filter.SortMode) {
	if mode == m.sort {
		return
	}
	m.sort = mode
	m.recompute()
}

// ToggleSort switches between points order and fetch order.
func (m *Model) ToggleSort() filter.SortMode {
	m.SetSort(m.sort.Toggle())
	return m.sort
}

// Dismiss hides the story with id for good. The set is persisted right away;
// a failed write is logged and the story stays hidden for this session.
func (m *Model) Dismiss(id string) {
	key := m.keyFor(id)
	m.dismissed[key] = true
	m.recompute()
	m.persist(DismissedKey, m.dismissed)
}

// MarkOpened records that the story with id was opened. The derived view is
// unchanged.
func (m *Model) MarkOpened(id string) {
	key := m.keyFor(id)
	m.opened[key] = true
	m.persist(OpenedKey, m.opened)
}

// Reset empties both sets, persists them and recomputes. Stores that can
// delete keys drop them; others get empty sets written.
func (m *Model) Reset() {
	m.dismissed = IDSet{}
	m.opened = IDSet{}
	m.clear(DismissedKey, m.dismissed)
	m.clear(OpenedKey, m.opened)
	m.recompute()
}

// DerivedView returns the stories to display. Empty unless the model is ready.
// The returned slice is a copy.
func (m *Model) DerivedView() []story.Story {
	return append([]story.Story(nil), m.view...)
}

// IsOpened reports whether the story with id has been opened.
func (m *Model) IsOpened(id string) bool {
	return m.opened.Has(id) || m.opened.Has(m.keyFor(id))
}

// IsDismissed reports whether the story with id has been dismissed.
func (m *Model) IsDismissed(id string) bool {
	return m.dismissed.Has(id) || m.dismissed.Has(m.keyFor(id))
}

// Dismissed returns the dismissed keys in lexical order.
func (m *Model) Dismissed() []string { return m.dismissed.Sorted() }

// Opened returns the opened keys in lexical order.
func (m *Model) Opened() []string { return m.opened.Sorted() }

// State returns the fetch lifecycle state.
func (m *Model) State() State { return m.state }

// Err returns the fetch error when the state is StateFailed.
func (m *Model) Err() error { return m.err }

// SearchText returns the current search text.
func (m *Model) SearchText() string { return m.search }

// Sort returns the current sort mode.
func (m *Model) Sort() filter.SortMode { return m.sort }

// Total returns the size of the raw story set.
func (m *Model) Total() int { return len(m.raw) }

// keyFor maps a story id to its set key under the configured key mode.
// Ids not present in the raw set are used as-is; lookups also accept the bare
// id, so they keep matching once the story arrives.
func (m *Model) keyFor(id string) string {
	if m.keyMode != story.KeyByURL {
		return id
	}
	for _, s := range m.raw {
		if s.ID == id {
			return m.keyMode.Key(s)
		}
	}
	return id
}

func (m *Model) recompute() {
	if m.state != StateReady {
		m.view = nil
		return
	}
	m.view = filter.Derive(m.raw, m.dismissed, m.search, m.sort, m.keyMode)
}

func (m *Model) loadSet(key string) IDSet {
	set, err := loadIDSet(m.prefs, key)
	if err != nil {
		m.logger.Warn("ignoring unreadable preference", "key", key, "err", err)
	}
	return set
}

func union(a, b IDSet) IDSet {
	for k := range b {
		a[k] = true
	}
	return a
}

func (m *Model) clear(key string, empty IDSet) {
	d, ok := m.prefs.(deleter)
	if !ok {
		m.persist(key, empty)
		return
	}
	if err := d.Delete(key); err != nil {
		m.logger.Warn("failed to clear preference", "key", key, "err", err)
	}
}

func (m *Model) persist(key string, set IDSet) {
	if err := saveIDSet(m.prefs, key, set); err != nil {
		m.logger.Warn("failed to persist preference", "key", key, "err", err)
	}
}
