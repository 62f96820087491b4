package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/hntop/internal/story"
)

// linesPerStory returns how many terminal lines one story occupies.
func linesPerStory(compact bool) int {
	if compact {
		return 1
	}
	return 2
}

// calcScrollOffset returns the index of the first visible story such that the
// cursor stays on screen.
func calcScrollOffset(total, cursor, visible int) int {
	if total == 0 || cursor < 0 || visible < 1 {
		return 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	if cursor >= visible {
		return cursor - visible + 1
	}
	return 0
}

// RenderStream renders the story list. opened reports whether a story's link
// has been followed, which dims its title.
func RenderStream(stories []story.Story, cursor int, opened func(id string) bool, width, height int, compact bool, now time.Time) string {
	if len(stories) == 0 {
		return HelpStyle.Render("No stories to display. Press 'r' to refresh or Esc to clear the search.")
	}

	perStory := linesPerStory(compact)
	visible := height / perStory
	if visible < 1 {
		visible = 1
	}

	offset := calcScrollOffset(len(stories), cursor, visible)
	end := offset + visible
	if end > len(stories) {
		end = len(stories)
	}

	var b strings.Builder
	for i := offset; i < end; i++ {
		s := stories[i]
		isOpened := opened != nil && opened(s.ID)
		b.WriteString(renderTitleLine(s, i == cursor, isOpened, width))
		b.WriteString("\n")
		if !compact {
			b.WriteString(MetaLine.Render(formatMeta(s, now)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderTitleLine renders the title with its domain, truncated to width.
func renderTitleLine(s story.Story, selected, opened bool, width int) string {
	suffix := " (text post)"
	if d := s.Domain(); d != "" {
		suffix = " (" + d + ")"
	}

	// Account for style padding and the suffix
	titleWidth := width - utf8.RuneCountInString(suffix) - 4
	if titleWidth < 20 {
		titleWidth = 20
	}

	title := truncate(s.Title, titleWidth)

	var titleStyle lipgloss.Style
	switch {
	case selected:
		titleStyle = SelectedItem
		if opened {
			titleStyle = titleStyle.Foreground(lipgloss.Color("250")).Bold(false)
		}
	case opened:
		titleStyle = OpenedItem
	default:
		titleStyle = NormalItem
	}

	return titleStyle.Render(title) + MetaItem.Render(suffix)
}

// formatMeta renders "1,204 points by pg, 3 hours ago, 45 comments".
func formatMeta(s story.Story, now time.Time) string {
	points := "points"
	if s.Points == 1 {
		points = "point"
	}
	comments := "comments"
	if s.NumComments == 1 {
		comments = "comment"
	}
	return fmt.Sprintf("%s %s by %s, %s, %d %s",
		humanize.Comma(int64(s.Points)), points, s.Author,
		humanize.RelTime(s.CreatedAt, now, "ago", "from now"),
		s.NumComments, comments)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// renderHeader renders the title bar with story counts.
func renderHeader(label string, shown, total int, order string, width int) string {
	title := Header.Render("Hacker News " + label + " stories")
	info := HeaderInfo.Render(fmt.Sprintf("%d/%d stories, sorted by %s", shown, total, order))
	line := title + info
	pad := width - lipgloss.Width(line)
	if pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

// RenderSearchBar renders the search input with the filtered count.
func RenderSearchBar(input string, shown, total int, width int) string {
	count := FilterBarCount.Render(fmt.Sprintf(" %d/%d", shown, total))
	content := input + count
	padding := width - lipgloss.Width(content) - 2 // -2 for bar padding
	if padding < 0 {
		padding = 0
	}
	return FilterBar.Width(width).Render(content + strings.Repeat(" ", padding))
}

// RenderStatusBar renders the bottom status bar with a message or position on
// the left and key hints on the right.
func RenderStatusBar(left string, bindings []key.Binding, width int) string {
	left = " " + left + " "

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, StatusBarKey.Render(h.Key)+StatusBarText.Render(":"+h.Desc))
	}
	keyHints := strings.Join(hints, " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}

	bar := left + strings.Repeat(" ", padding) + keyHints
	return StatusBar.Width(width).Render(bar)
}
