package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/abelbrown/hntop/internal/config"
	"github.com/abelbrown/hntop/internal/fetch"
	"github.com/abelbrown/hntop/internal/logging"
	"github.com/abelbrown/hntop/internal/store"
	"github.com/abelbrown/hntop/internal/viewmodel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	m.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// DataDir holds config.json, .env and logs. Empty disables file logging.
	DataDir string

	// Prefs and Source replace the SQLite store and the Algolia fetcher when
	// set. Used by tests.
	Prefs  viewmodel.Prefs
	Source viewmodel.Source

	store *store.Store
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{DataDir: config.DataDir()}
}

// Close releases the store and the log file.
func (m *Main) Close() {
	if m.store != nil {
		m.store.Close()
		m.store = nil
	}
	logging.Close()
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("hntop"),
		kong.Description("Top Hacker News stories from the past week."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.UsageOnError(),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := m.loadConfig(cli)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.ConfigPath = m.configPath(cli)

	logger := log.New(io.Discard)
	if m.DataDir != "" {
		if err := logging.Init(m.DataDir, logging.ParseLevel(cfg.LogLevel)); err != nil {
			fmt.Fprintf(stderr, "warning: logging disabled: %v\n", err)
		} else {
			logger = logging.Logger
		}
	}
	deps.Logger = logger

	deps.Prefs = m.Prefs
	if deps.Prefs == nil {
		dbPath := cfg.DBPath()
		if dbPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		st, err := store.Open(dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Hint: set HNTOP_DB or --db to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
		}
		m.store = st
		deps.Prefs = st
	}

	deps.Source = m.Source
	if deps.Source == nil {
		profile := cfg.FetchProfile()
		opts := append(cfg.FetchOptions(), fetch.WithLogger(logger.WithPrefix("fetch")))
		fetcher := fetch.NewFetcher(cfg.Timeout(), opts...)
		deps.Source = fetch.ProfileSource{Fetcher: fetcher, Profile: profile}
		logger.Debug("profile", "name", profile.Name, "endpoint", profile.Endpoint, "min_points", profile.MinPoints)
	}

	return kongCtx.Run(deps)
}

// loadConfig reads config.json and .env, then applies global flags.
func (m *Main) loadConfig(cli *CLI) (*config.Config, error) {
	path := m.configPath(cli)

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg.AutoPopulateFromEnv()
	}

	if m.DataDir != "" {
		err := cfg.LoadEnvFile(filepath.Join(m.DataDir, ".env"))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	if cli.Profile != "" {
		cfg.Fetch.Profile = cli.Profile
	}
	if cli.MinPoints >= 0 {
		n := cli.MinPoints
		cfg.Fetch.MinPoints = &n
	}
	if cli.DB != "" {
		cfg.Prefs.DBPath = cli.DB
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath returns --config, or config.json in the data directory.
func (m *Main) configPath(cli *CLI) string {
	if cli.Config != "" || m.DataDir == "" {
		return cli.Config
	}
	return config.ConfigPath(m.DataDir)
}
