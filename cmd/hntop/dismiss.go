package main

import (
	"fmt"

	"github.com/abelbrown/hntop/internal/story"
)

// Run executes the dismiss command.
func (c *DismissCmd) Run(deps *Dependencies) error {
	vm := deps.NewModel()
	defer vm.Close()

	// URL keys need the fetched stories to resolve ids.
	if deps.Config != nil && deps.Config.KeyMode() == story.KeyByURL {
		if err := vm.Load(deps.Ctx); err != nil {
			return fmt.Errorf("fetch stories: %w", err)
		}
	} else {
		vm.LoadPrefs()
	}

	for _, id := range c.IDs {
		if vm.IsDismissed(id) {
			fmt.Fprintf(deps.Stdout, "Already dismissed %s\n", id)
			continue
		}
		vm.Dismiss(id)
		fmt.Fprintf(deps.Stdout, "Dismissed %s\n", id)
	}
	return nil
}
