package viewmodel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/hntop/internal/filter"
	"github.com/abelbrown/hntop/internal/store"
	"github.com/abelbrown/hntop/internal/story"
	"github.com/abelbrown/hntop/internal/viewmodel"
)

func scenarioStories() []story.Story {
	return []story.Story{
		{ID: "a", Title: "Rust news", Points: 50},
		{ID: "b", Title: "Go news", Points: 80},
	}
}

func staticSource(stories []story.Story) viewmodel.Source {
	return viewmodel.SourceFunc(func(context.Context) ([]story.Story, error) {
		return stories, nil
	})
}

func viewIDs(m *viewmodel.Model) []string {
	ids := []string{}
	for _, s := range m.DerivedView() {
		ids = append(ids, s.ID)
	}
	return ids
}

func loaded(t *testing.T, stories []story.Story, prefs viewmodel.Prefs, opts ...viewmodel.Option) *viewmodel.Model {
	t.Helper()
	m := viewmodel.New(staticSource(stories), prefs, opts...)
	require.NoError(t, m.Load(context.Background()))
	return m
}

func TestModel_Scenarios(t *testing.T) {
	t.Parallel()

	t.Run("sorts by descending points", func(t *testing.T) {
		t.Parallel()
		m := loaded(t, scenarioStories(), store.NewMemStore())
		assert.Equal(t, []string{"b", "a"}, viewIDs(m))
	})

	t.Run("dismiss removes the story", func(t *testing.T) {
		t.Parallel()
		m := loaded(t, scenarioStories(), store.NewMemStore())
		m.Dismiss("b")
		assert.Equal(t, []string{"a"}, viewIDs(m))
	})

	t.Run("search is case-insensitive on title", func(t *testing.T) {
		t.Parallel()
		m := loaded(t, scenarioStories(), store.NewMemStore())
		m.SetSearchText("go")
		assert.Equal(t, []string{"b"}, viewIDs(m))
		m.SetSearchText("NEWS")
		assert.Equal(t, []string{"b", "a"}, viewIDs(m))
		m.SetSearchText("")
		assert.Equal(t, []string{"b", "a"}, viewIDs(m))
	})

	t.Run("fetch failure", func(t *testing.T) {
		t.Parallel()
		src := viewmodel.SourceFunc(func(context.Context) ([]story.Story, error) {
			return nil, errors.New("network unreachable")
		})
		m := viewmodel.New(src, store.NewMemStore())

		err := m.Load(context.Background())

		require.Error(t, err)
		assert.Equal(t, viewmodel.StateFailed, m.State())
		assert.Empty(t, m.DerivedView())
		assert.Equal(t, "network unreachable", m.Err().Error())
	})
}

func TestModel_Lifecycle(t *testing.T) {
	t.Parallel()

	m := viewmodel.New(staticSource(scenarioStories()), store.NewMemStore())
	assert.Equal(t, viewmodel.StateUninitialized, m.State())

	pending := m.Initialize(context.Background())
	assert.Equal(t, viewmodel.StateLoading, m.State())
	assert.Empty(t, m.DerivedView(), "no view until the fetch resolves")

	// Search while loading is remembered and applied once ready.
	m.SetSearchText("rust")

	require.True(t, m.Resolve(pending()))
	assert.Equal(t, viewmodel.StateReady, m.State())
	assert.Equal(t, []string{"a"}, viewIDs(m))
	assert.Equal(t, 2, m.Total())
}

func TestModel_RetryAfterFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	src := viewmodel.SourceFunc(func(context.Context) ([]story.Story, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return scenarioStories(), nil
	})
	m := viewmodel.New(src, store.NewMemStore())

	require.Error(t, m.Load(context.Background()))
	assert.Equal(t, viewmodel.StateFailed, m.State())

	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, viewmodel.StateReady, m.State())
	assert.Nil(t, m.Err())
	assert.Equal(t, []string{"b", "a"}, viewIDs(m))
	assert.Equal(t, 2, calls, "exactly one fetch per Initialize")
}

func TestModel_StaleResultDiscarded(t *testing.T) {
	t.Parallel()

	m := viewmodel.New(staticSource(scenarioStories()), store.NewMemStore())

	first := m.Initialize(context.Background())
	second := m.Initialize(context.Background())

	assert.False(t, m.Resolve(first()), "older generation must be ignored")
	assert.Equal(t, viewmodel.StateLoading, m.State())

	assert.True(t, m.Resolve(second()))
	assert.False(t, m.Resolve(second()), "a result applies once")
}

func TestModel_ResultAfterCloseDiscarded(t *testing.T) {
	t.Parallel()

	m := viewmodel.New(staticSource(scenarioStories()), store.NewMemStore())
	pending := m.Initialize(context.Background())
	m.Close()

	assert.False(t, m.Resolve(pending()))
	assert.Empty(t, m.DerivedView())
}

func TestModel_DismissIdempotent(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	m := loaded(t, scenarioStories(), prefs)

	m.Dismiss("b")
	onceView := viewIDs(m)
	onceSet := m.Dismissed()
	oncePersisted, err := prefs.Get(viewmodel.DismissedKey)
	require.NoError(t, err)

	m.Dismiss("b")
	assert.Equal(t, onceView, viewIDs(m))
	assert.Equal(t, onceSet, m.Dismissed())

	twicePersisted, err := prefs.Get(viewmodel.DismissedKey)
	require.NoError(t, err)
	assert.JSONEq(t, string(oncePersisted), string(twicePersisted))
}

func TestModel_DismissedNeverReappears(t *testing.T) {
	t.Parallel()

	m := loaded(t, scenarioStories(), store.NewMemStore())
	m.Dismiss("b")

	// A later fetch re-supplies b.
	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, []string{"a"}, viewIDs(m))
	assert.True(t, m.IsDismissed("b"))
}

func TestModel_DismissBeforeFetch(t *testing.T) {
	t.Parallel()

	m := viewmodel.New(staticSource(scenarioStories()), store.NewMemStore())
	m.Dismiss("a")

	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, []string{"b"}, viewIDs(m))
}

func TestModel_PersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	first := loaded(t, scenarioStories(), prefs)
	first.Dismiss("a")
	first.Dismiss("zzz-not-fetched")
	first.MarkOpened("b")

	second := loaded(t, scenarioStories(), prefs)
	assert.Equal(t, first.Dismissed(), second.Dismissed())
	assert.Equal(t, []string{"a", "zzz-not-fetched"}, second.Dismissed())
	assert.True(t, second.IsOpened("b"))
	assert.Equal(t, []string{"b"}, viewIDs(second))
}

func TestModel_PersistenceRoundTripSQLite(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	first := loaded(t, scenarioStories(), st)
	first.Dismiss("b")

	second := loaded(t, scenarioStories(), st)
	assert.Equal(t, []string{"a"}, viewIDs(second))
}

func TestModel_MalformedPrefs(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":       `{{{nope`,
		"array":          `["a","b"]`,
		"wrong values":   `{"a":1}`,
		"string":         `"a"`,
		"null":           `null`,
		"empty document": ``,
	}

	for name, payload := range cases {
		payload := payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			prefs := store.NewMemStore()
			require.NoError(t, prefs.Set(viewmodel.DismissedKey, []byte(payload)))
			require.NoError(t, prefs.Set(viewmodel.OpenedKey, []byte(payload)))

			m := loaded(t, scenarioStories(), prefs)

			assert.Empty(t, m.Dismissed())
			assert.Empty(t, m.Opened())
			assert.Equal(t, []string{"b", "a"}, viewIDs(m))
		})
	}
}

func TestModel_FalseEntriesIgnored(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	require.NoError(t, prefs.Set(viewmodel.DismissedKey, []byte(`{"a":true,"b":false}`)))

	m := loaded(t, scenarioStories(), prefs)
	assert.Equal(t, []string{"a"}, m.Dismissed())
	assert.Equal(t, []string{"b"}, viewIDs(m))
}

func TestModel_PrefsReadError(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	prefs.GetErr = errors.New("disk on fire")

	m := loaded(t, scenarioStories(), prefs)
	assert.Equal(t, viewmodel.StateReady, m.State())
	assert.Equal(t, []string{"b", "a"}, viewIDs(m))
}

func TestModel_PrefsWriteFailureKeepsDismissal(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	m := loaded(t, scenarioStories(), prefs)
	prefs.SetErr = errors.New("quota exceeded")

	m.Dismiss("b")
	m.MarkOpened("a")

	assert.Equal(t, []string{"a"}, viewIDs(m))
	assert.True(t, m.IsOpened("a"))

	// Refetching within the session keeps the unpersisted dismissal.
	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, []string{"a"}, viewIDs(m))
}

func TestModel_MarkOpenedKeepsStory(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	m := loaded(t, scenarioStories(), prefs)

	m.MarkOpened("a")
	m.MarkOpened("a")

	assert.Equal(t, []string{"b", "a"}, viewIDs(m))
	assert.True(t, m.IsOpened("a"))
	assert.False(t, m.IsOpened("b"))

	data, err := prefs.Get(viewmodel.OpenedKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":true}`, string(data))
}

func TestModel_SortToggle(t *testing.T) {
	t.Parallel()

	stories := []story.Story{
		{ID: "low", Title: "x", Points: 1},
		{ID: "high", Title: "y", Points: 9},
		{ID: "mid", Title: "z", Points: 5},
	}
	m := loaded(t, stories, store.NewMemStore())
	assert.Equal(t, []string{"high", "mid", "low"}, viewIDs(m))

	assert.Equal(t, filter.SortFetch, m.ToggleSort())
	assert.Equal(t, []string{"low", "high", "mid"}, viewIDs(m))

	assert.Equal(t, filter.SortPoints, m.ToggleSort())
	assert.Equal(t, []string{"high", "mid", "low"}, viewIDs(m))
}

func TestModel_KeyByURL(t *testing.T) {
	t.Parallel()

	stories := []story.Story{
		{ID: "1", Title: "Original", URL: "https://example.com/post", Points: 10},
		{ID: "2", Title: "Repost", URL: "https://example.com/post", Points: 20},
		{ID: "3", Title: "Ask HN", Points: 30},
	}
	prefs := store.NewMemStore()
	m := loaded(t, stories, prefs, viewmodel.WithKeyMode(story.KeyByURL))

	m.Dismiss("1")
	assert.Equal(t, []string{"3"}, viewIDs(m), "every story sharing the URL is hidden")
	assert.True(t, m.IsDismissed("2"))

	m.Dismiss("3")
	assert.Empty(t, viewIDs(m))
	assert.Equal(t, []string{"3", "https://example.com/post"}, m.Dismissed())
}

func TestModel_KeyByURLDismissBeforeFetch(t *testing.T) {
	t.Parallel()

	stories := []story.Story{
		{ID: "a", Title: "A", URL: "https://x.example/a", Points: 5},
		{ID: "b", Title: "B", URL: "https://x.example/b", Points: 3},
	}
	prefs := store.NewMemStore()
	m := viewmodel.New(staticSource(stories), prefs, viewmodel.WithKeyMode(story.KeyByURL))

	m.Dismiss("a")
	m.MarkOpened("b")
	require.NoError(t, m.Load(context.Background()))

	assert.True(t, m.IsDismissed("a"))
	assert.True(t, m.IsOpened("b"))
	assert.Equal(t, []string{"b"}, viewIDs(m))

	fresh := loaded(t, stories, prefs, viewmodel.WithKeyMode(story.KeyByURL))
	assert.True(t, fresh.IsDismissed("a"))
	assert.Equal(t, []string{"b"}, viewIDs(fresh))
}

func TestModel_Reset(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	m := loaded(t, scenarioStories(), prefs)
	m.Dismiss("a")
	m.MarkOpened("b")

	m.Reset()

	assert.Equal(t, []string{"b", "a"}, viewIDs(m))
	assert.False(t, m.IsOpened("b"))

	fresh := loaded(t, scenarioStories(), prefs)
	assert.Empty(t, fresh.Dismissed())
	assert.Empty(t, fresh.Opened())

	_, err := prefs.Get(viewmodel.DismissedKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "reset deletes the key")
	_, err = prefs.Get(viewmodel.OpenedKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// getSetOnly hides MemStore.Delete.
type getSetOnly struct{ m *store.MemStore }

func (g getSetOnly) Get(key string) ([]byte, error) { return g.m.Get(key) }
func (g getSetOnly) Set(key string, value []byte) error { return g.m.Set(key, value) }

func TestModel_ResetWithoutDelete(t *testing.T) {
	t.Parallel()

	mem := store.NewMemStore()
	m := loaded(t, scenarioStories(), getSetOnly{mem})
	m.Dismiss("a")

	m.Reset()

	data, err := mem.Get(viewmodel.DismissedKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
	assert.Equal(t, []string{"b", "a"}, viewIDs(m))
}

func TestModel_LoadPrefsWithoutFetch(t *testing.T) {
	t.Parallel()

	prefs := store.NewMemStore()
	require.NoError(t, prefs.Set(viewmodel.DismissedKey, []byte(`{"a":true}`)))
	require.NoError(t, prefs.Set(viewmodel.OpenedKey, []byte(`{"b":true}`)))

	fetched := false
	m := viewmodel.New(viewmodel.SourceFunc(func(context.Context) ([]story.Story, error) {
		fetched = true
		return nil, nil
	}), prefs)
	m.LoadPrefs()

	assert.False(t, fetched)
	assert.Equal(t, viewmodel.StateUninitialized, m.State())
	assert.Equal(t, []string{"a"}, m.Dismissed())
	assert.Equal(t, []string{"b"}, m.Opened())
	assert.Empty(t, m.DerivedView())
}

func TestModel_DerivedViewIsCopy(t *testing.T) {
	t.Parallel()

	m := loaded(t, scenarioStories(), store.NewMemStore())
	view := m.DerivedView()
	view[0].Title = "mutated"

	assert.Equal(t, "Go news", m.DerivedView()[0].Title)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "uninitialized", viewmodel.StateUninitialized.String())
	assert.Equal(t, "loading", viewmodel.StateLoading.String())
	assert.Equal(t, "ready", viewmodel.StateReady.String())
	assert.Equal(t, "failed", viewmodel.StateFailed.String())
}
