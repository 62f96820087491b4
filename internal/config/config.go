// Package config loads hntop settings from ~/.hntop/config.json and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abelbrown/hntop/internal/fetch"
	"github.com/abelbrown/hntop/internal/filter"
	"github.com/abelbrown/hntop/internal/story"
)

// Config is the persistent application configuration
type Config struct {
	Fetch FetchConfig `json:"fetch"`
	Prefs PrefsConfig `json:"prefs"`
	UI    UIConfig    `json:"ui"`

	LogLevel string `json:"log_level"` // debug, info, warn, error
}

// FetchConfig selects the search query
type FetchConfig struct {
	Profile        string `json:"profile"`              // "top" or "recent"
	MinPoints      *int   `json:"min_points,omitempty"` // nil keeps the profile's floor
	HitsPerPage    int    `json:"hits_per_page,omitempty"`
	MaxPages       int    `json:"max_pages,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	BaseURL        string `json:"base_url,omitempty"`
	UserAgent      string `json:"user_agent,omitempty"`
}

// PrefsConfig controls where dismissed/opened state lives
type PrefsConfig struct {
	DBPath string `json:"db_path,omitempty"` // empty = <data dir>/hntop.db
	KeyBy  string `json:"key_by"`            // "id" or "url"
}

// UIConfig holds UI preferences
type UIConfig struct {
	Sort    string `json:"sort"` // "points" or "fetch"
	Compact bool   `json:"compact"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			Profile:        "top",
			TimeoutSeconds: 30,
			BaseURL:        fetch.DefaultBaseURL,
		},
		Prefs: PrefsConfig{
			KeyBy: string(story.KeyByID),
		},
		UI: UIConfig{
			Sort: string(filter.SortPoints),
		},
		LogLevel: "info",
	}
}

// DataDir returns ~/.hntop, or .hntop in the working directory when the
// home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hntop"
	}
	return filepath.Join(home, ".hntop")
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.json")
}

// Load reads config from path, or returns defaults when the file is missing
// or malformed. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		cfg = DefaultConfig()
	}
	cfg.AutoPopulateFromEnv()

	return cfg, nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AutoPopulateFromEnv applies HNTOP_* environment variables
func (c *Config) AutoPopulateFromEnv() {
	c.apply(os.Getenv)
}

// LoadEnvFile applies HNTOP_* variables from a dotenv file. Values already
// present in the process environment are not overridden.
func (c *Config) LoadEnvFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	c.apply(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return vars[key]
	})
	return nil
}

func (c *Config) apply(getenv func(string) string) {
	if v := getenv("HNTOP_PROFILE"); v != "" {
		c.Fetch.Profile = v
	}
	if v := getenv("HNTOP_MIN_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Fetch.MinPoints = &n
		}
	}
	if v := getenv("HNTOP_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Fetch.TimeoutSeconds = n
		}
	}
	if v := getenv("HNTOP_KEY_BY"); v != "" {
		c.Prefs.KeyBy = v
	}
	if v := getenv("HNTOP_DB"); v != "" {
		c.Prefs.DBPath = v
	}
	if v := getenv("HNTOP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects settings that would otherwise fall back silently.
func (c *Config) Validate() error {
	if _, ok := fetch.ProfileByName(c.Fetch.Profile); !ok {
		return fmt.Errorf("unknown profile %q (want top or recent)", c.Fetch.Profile)
	}
	return nil
}

// FetchOptions returns the fetcher options implied by the config.
func (c *Config) FetchOptions() []fetch.Option {
	var opts []fetch.Option
	if c.Fetch.BaseURL != "" {
		opts = append(opts, fetch.WithBaseURL(c.Fetch.BaseURL))
	}
	if c.Fetch.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(c.Fetch.UserAgent))
	}
	return opts
}

// FetchProfile resolves the configured profile with overrides applied.
func (c *Config) FetchProfile() fetch.Profile {
	p, _ := fetch.ProfileByName(c.Fetch.Profile)
	if c.Fetch.MinPoints != nil {
		p.MinPoints = *c.Fetch.MinPoints
	}
	if c.Fetch.HitsPerPage > 0 {
		p.HitsPerPage = c.Fetch.HitsPerPage
	}
	if c.Fetch.MaxPages > 0 {
		p.MaxPages = c.Fetch.MaxPages
	}
	return p
}

// Timeout returns the HTTP timeout.
func (c *Config) Timeout() time.Duration {
	if c.Fetch.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// DBPath returns the preference database location.
func (c *Config) DBPath() string {
	if c.Prefs.DBPath != "" {
		return c.Prefs.DBPath
	}
	return filepath.Join(DataDir(), "hntop.db")
}

// KeyMode returns the configured dismissal key mode.
func (c *Config) KeyMode() story.KeyMode {
	return story.ParseKeyMode(c.Prefs.KeyBy)
}

// SortMode returns the configured initial sort.
func (c *Config) SortMode() filter.SortMode {
	return filter.ParseSortMode(c.UI.Sort)
}
