package main

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/hntop/internal/config"
	"github.com/abelbrown/hntop/internal/viewmodel"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
	// ConfigPath is where Config was read from and where init writes it.
	ConfigPath string
	Prefs  viewmodel.Prefs
	Source viewmodel.Source
	Logger *log.Logger
}

// NewModel builds a view model over the configured source and store.
func (d *Dependencies) NewModel() *viewmodel.Model {
	cfg := d.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := log.New(io.Discard)
	if d.Logger != nil {
		logger = d.Logger.WithPrefix("viewmodel")
	}
	return viewmodel.New(d.Source, d.Prefs,
		viewmodel.WithKeyMode(cfg.KeyMode()),
		viewmodel.WithSort(cfg.SortMode()),
		viewmodel.WithLogger(logger),
	)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    string `help:"Path to config.json" type:"path" placeholder:"PATH"`
	DB        string `help:"Preference database path (':memory:' for a throwaway store)" placeholder:"PATH"`
	Profile   string `help:"Query profile: top or recent"`
	MinPoints int    `name:"min-points" help:"Minimum points, overrides the profile" default:"-1"`

	TUI     TUICmd     `cmd:"" name:"tui" default:"1" help:"Browse stories interactively (default)"`
	List    ListCmd    `cmd:"" help:"Print the current story list"`
	Dismiss DismissCmd `cmd:"" help:"Hide stories by id"`
	Reset   ResetCmd   `cmd:"" help:"Forget all dismissed and opened stories"`
	Init    InitCmd    `cmd:"" help:"Write the current settings to config.json"`
}

// TUICmd is the "tui" subcommand.
type TUICmd struct {
	Compact bool `short:"c" help:"One line per story"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Search string `short:"s" help:"Only titles containing this text"`
	Limit  int    `short:"n" default:"30" help:"Maximum stories to print (0 for all)"`
	Sort   string `help:"Order: points or fetch (default from config)"`
}

// DismissCmd is the "dismiss" subcommand.
type DismissCmd struct {
	IDs []string `arg:"" name:"id" help:"Story ids to hide"`
}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct{}

// InitCmd is the "init" subcommand.
type InitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing config file"`
}
