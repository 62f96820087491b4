package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/hntop/internal/filter"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	vm := deps.NewModel()
	defer vm.Close()

	if err := vm.Load(deps.Ctx); err != nil {
		return fmt.Errorf("fetch stories: %w", err)
	}

	if c.Sort != "" {
		vm.SetSort(filter.ParseSortMode(c.Sort))
	}
	vm.SetSearchText(c.Search)

	stories := vm.DerivedView()
	if len(stories) == 0 {
		fmt.Fprintln(deps.Stdout, "No stories found.")
		return nil
	}
	if c.Limit > 0 && len(stories) > c.Limit {
		stories = stories[:c.Limit]
	}

	now := time.Now()
	for _, s := range stories {
		mark := " "
		if vm.IsOpened(s.ID) {
			mark = "*"
		}
		domain := s.Domain()
		if domain == "" {
			domain = "text post"
		}
		fmt.Fprintf(deps.Stdout, "%s %-9s %6s  %s (%s)\n", mark, s.ID, humanize.Comma(int64(s.Points)), s.Title, domain)
		fmt.Fprintf(deps.Stdout, "  %-9s %6s  by %s %s, %d comments\n", "", "", s.Author, humanize.RelTime(s.CreatedAt, now, "ago", "from now"), s.NumComments)
	}

	fmt.Fprintf(deps.Stdout, "\n%d of %d stories\n", len(stories), vm.Total())
	return nil
}
