package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/abelbrown/hntop/internal/filter"
	"github.com/abelbrown/hntop/internal/story"
	"github.com/abelbrown/hntop/internal/viewmodel"
)

// AppConfig holds the dependencies of the App.
type AppConfig struct {
	Model   *viewmodel.Model
	Context context.Context

	// OpenURL and CopyURL default to OpenURLInBrowser and CopyURLToClipboard.
	OpenURL func(string) error
	CopyURL func(string) error

	Logger  *log.Logger
	Title   string // profile label shown in the header
	Compact bool
	Now     func() time.Time
}

// App is the root Bubble Tea model.
// All story state lives in the view model; App only tracks the cursor, the
// search box and transient status text.
type App struct {
	vm      *viewmodel.Model
	ctx     context.Context
	openURL func(string) error
	copyURL func(string) error
	logger  *log.Logger
	now     func() time.Time

	keys    KeyMap
	spinner spinner.Model
	search  textinput.Model

	title     string
	compact   bool
	searching bool
	cursor    int
	status    string
	width     int
	height    int
	ready     bool
}

// NewApp creates a new App.
func NewApp(cfg AppConfig) App {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	openURL := cfg.OpenURL
	if openURL == nil {
		openURL = OpenURLInBrowser
	}
	copyURL := cfg.CopyURL
	if copyURL == nil {
		copyURL = CopyURLToClipboard
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	title := cfg.Title
	if title == "" {
		title = "top"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search titles"
	ti.CharLimit = 200

	return App{
		vm:      cfg.Model,
		ctx:     ctx,
		openURL: openURL,
		copyURL: copyURL,
		logger:  logger,
		now:     now,
		keys:    DefaultKeyMap(),
		spinner: sp,
		search:  ti,
		title:   title,
		compact: cfg.Compact,
	}
}

// Init starts the first fetch.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.startLoad(), a.spinner.Tick)
}

// startLoad moves the view model into the loading state and returns the
// command that runs the fetch off the UI goroutine.
func (a App) startLoad() tea.Cmd {
	pending := a.vm.Initialize(a.ctx)
	return func() tea.Msg {
		return StoriesLoaded{Result: pending()}
	}
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.searching {
			return a.handleSearchKey(msg)
		}
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search.Width = msg.Width - 16
		a.ready = true
		return a, nil

	case StoriesLoaded:
		if a.vm.Resolve(msg.Result) {
			a.clampCursor()
		}
		return a, nil

	case URLOpened:
		switch {
		case msg.Err != nil:
			a.logger.Warn("could not open link", "id", msg.ID, "url", msg.URL, "err", msg.Err)
			a.status = "Could not open " + msg.URL
		case msg.Copied:
			a.status = "Copied to clipboard: " + msg.URL
		default:
			a.status = "Opened " + msg.URL
		}
		return a, nil

	case spinner.TickMsg:
		if a.vm.State() != viewmodel.StateLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleKeyMsg processes keyboard input in list mode.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""
	view := a.vm.DerivedView()

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.vm.Close()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(view)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Home):
		a.cursor = 0

	case key.Matches(msg, a.keys.End):
		if len(view) > 0 {
			a.cursor = len(view) - 1
		}

	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.search.SetValue(a.vm.SearchText())
		a.search.CursorEnd()
		cmd := a.search.Focus()
		return a, cmd

	case key.Matches(msg, a.keys.Dismiss):
		if s, ok := a.selected(view); ok {
			a.vm.Dismiss(s.ID)
			a.logger.Debug("dismissed", "id", s.ID)
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.Open):
		if s, ok := a.selected(view); ok {
			a.vm.MarkOpened(s.ID)
			return a, openURLCmd(s.ID, s.Link(), a.openURL, a.copyURL)
		}

	case key.Matches(msg, a.keys.Discuss):
		if s, ok := a.selected(view); ok {
			return a, openURLCmd(s.ID, s.DiscussionURL(), a.openURL, a.copyURL)
		}

	case key.Matches(msg, a.keys.Sort):
		mode := a.vm.ToggleSort()
		a.status = "Sorted by " + sortLabel(mode)
		a.clampCursor()

	case key.Matches(msg, a.keys.Refresh):
		a.cursor = 0
		return a, tea.Batch(a.startLoad(), a.spinner.Tick)
	}

	return a, nil
}

// handleSearchKey processes keyboard input while the search box has focus.
// The derived view follows every keystroke.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Clear):
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		a.vm.SetSearchText("")
		a.clampCursor()
		return a, nil

	case key.Matches(msg, a.keys.Accept):
		a.searching = false
		a.search.Blur()
		return a, nil

	case msg.Type == tea.KeyCtrlC:
		a.vm.Close()
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.vm.SetSearchText(a.search.Value())
	a.cursor = 0
	return a, cmd
}

func (a App) selected(view []story.Story) (story.Story, bool) {
	if a.cursor < 0 || a.cursor >= len(view) {
		return story.Story{}, false
	}
	return view[a.cursor], true
}

// clampCursor keeps the cursor inside the derived view after it shrinks.
func (a *App) clampCursor() {
	n := len(a.vm.DerivedView())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	view := a.vm.DerivedView()

	var b strings.Builder
	b.WriteString(renderHeader(a.title, len(view), a.vm.Total(), sortLabel(a.vm.Sort()), a.width))
	b.WriteString("\n")

	// Header and status bar take one line each
	contentHeight := a.height - 2
	if a.searching || a.vm.SearchText() != "" {
		b.WriteString(RenderSearchBar(a.searchLine(), len(view), a.vm.Total(), a.width))
		b.WriteString("\n")
		contentHeight--
	}

	switch a.vm.State() {
	case viewmodel.StateUninitialized, viewmodel.StateLoading:
		b.WriteString(HelpStyle.Render(a.spinner.View() + " Loading stories..."))
		b.WriteString("\n")
	case viewmodel.StateFailed:
		b.WriteString(ErrorStyle.Width(a.width).Render(fmt.Sprintf("Error: %v", a.vm.Err())))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Press 'r' to retry or 'q' to quit."))
		b.WriteString("\n")
	default:
		b.WriteString(RenderStream(view, a.cursor, a.vm.IsOpened, a.width, contentHeight, a.compact, a.now()))
	}

	// Push the status bar to the bottom
	if pad := a.height - lipgloss.Height(b.String()) - 1; pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	}

	b.WriteString(RenderStatusBar(a.statusLine(len(view)), a.helpBindings(), a.width))
	return b.String()
}

func (a App) searchLine() string {
	if a.searching {
		return a.search.View()
	}
	return "/" + a.vm.SearchText()
}

func (a App) statusLine(shown int) string {
	if a.status != "" {
		return a.status
	}
	switch a.vm.State() {
	case viewmodel.StateLoading:
		return "Fetching..."
	case viewmodel.StateFailed:
		return "Fetch failed"
	}
	if shown == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", a.cursor+1, shown)
}

func (a App) helpBindings() []key.Binding {
	if a.searching {
		return a.keys.SearchHelp()
	}
	return a.keys.ShortHelp()
}

func sortLabel(m filter.SortMode) string {
	if m == filter.SortFetch {
		return "fetch order"
	}
	return "points"
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Searching reports whether the search box has focus (for testing).
func (a App) Searching() bool {
	return a.searching
}

// Status returns the transient status text (for testing).
func (a App) Status() string {
	return a.status
}
