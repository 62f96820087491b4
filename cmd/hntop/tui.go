package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/abelbrown/hntop/internal/ui"
)

// Run executes the tui command.
func (c *TUICmd) Run(deps *Dependencies) error {
	vm := deps.NewModel()
	defer vm.Close()

	var logger *log.Logger
	if deps.Logger != nil {
		logger = deps.Logger.WithPrefix("ui")
	}

	title := "top"
	compact := c.Compact
	if deps.Config != nil {
		title = deps.Config.FetchProfile().Name
		compact = compact || deps.Config.UI.Compact
	}

	app := ui.NewApp(ui.AppConfig{
		Model:   vm,
		Context: deps.Ctx,
		Logger:  logger,
		Title:   title,
		Compact: compact,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(deps.Ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
