package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelbrown/hntop/internal/fetch"
	"github.com/abelbrown/hntop/internal/filter"
	"github.com/abelbrown/hntop/internal/story"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"HNTOP_PROFILE", "HNTOP_MIN_POINTS", "HNTOP_TIMEOUT", "HNTOP_KEY_BY", "HNTOP_DB", "HNTOP_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p := cfg.FetchProfile()
	if p.Name != "top" || p.MinPoints != 10 {
		t.Errorf("expected top profile with 10 points, got %+v", p)
	}
	if cfg.KeyMode() != story.KeyByID {
		t.Errorf("expected key by id, got %q", cfg.KeyMode())
	}
	if cfg.SortMode() != filter.SortPoints {
		t.Errorf("expected points sort, got %q", cfg.SortMode())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Timeout())
	}
}

func TestLoadMalformedFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Fetch.Profile != "top" {
		t.Errorf("expected default profile, got %q", cfg.Fetch.Profile)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	zero := 0
	cfg.Fetch.Profile = "recent"
	cfg.Fetch.MinPoints = &zero
	cfg.Fetch.MaxPages = 2
	cfg.Prefs.KeyBy = "url"
	cfg.UI.Sort = "fetch"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p := got.FetchProfile()
	if p.Endpoint != fetch.EndpointRecency || p.MinPoints != 0 || p.MaxPages != 2 {
		t.Errorf("unexpected profile after round trip: %+v", p)
	}
	if got.KeyMode() != story.KeyByURL {
		t.Errorf("expected key by url, got %q", got.KeyMode())
	}
	if got.SortMode() != filter.SortFetch {
		t.Errorf("expected fetch sort, got %q", got.SortMode())
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HNTOP_PROFILE", "recent")
	t.Setenv("HNTOP_MIN_POINTS", "25")
	t.Setenv("HNTOP_TIMEOUT", "5")
	t.Setenv("HNTOP_DB", "/tmp/x.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if p := cfg.FetchProfile(); p.Name != "recent" || p.MinPoints != 25 {
		t.Errorf("env overrides not applied: %+v", p)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Timeout())
	}
	if cfg.DBPath() != "/tmp/x.db" {
		t.Errorf("expected db override, got %q", cfg.DBPath())
	}
}

func TestEnvIgnoresBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("HNTOP_MIN_POINTS", "lots")
	t.Setenv("HNTOP_TIMEOUT", "-3")

	cfg, _ := Load(filepath.Join(t.TempDir(), "absent.json"))

	if cfg.Fetch.MinPoints != nil {
		t.Errorf("bad min points should be ignored, got %d", *cfg.Fetch.MinPoints)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("bad timeout should be ignored, got %v", cfg.Timeout())
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte("HNTOP_KEY_BY=url\nexport HNTOP_LOG_LEVEL=debug\nHNTOP_MIN_POINTS=0\n"), 0644)

	cfg := DefaultConfig()
	if err := cfg.LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}

	if cfg.KeyMode() != story.KeyByURL {
		t.Errorf("expected key by url from .env, got %q", cfg.KeyMode())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %q", cfg.LogLevel)
	}
	if cfg.FetchProfile().MinPoints != 0 {
		t.Errorf("expected min points 0, got %d", cfg.FetchProfile().MinPoints)
	}
}

func TestLoadEnvFileProcessEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("HNTOP_PROFILE", "top")

	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte("HNTOP_PROFILE=recent\n"), 0644)

	cfg := DefaultConfig()
	if err := cfg.LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if cfg.Fetch.Profile != "top" {
		t.Errorf("process env should win over .env, got %q", cfg.Fetch.Profile)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Error("expected error for missing .env file")
	}
}

func TestValidateProfile(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}

	cfg.Fetch.Profile = "recent"
	if err := cfg.Validate(); err != nil {
		t.Errorf("recent should be valid: %v", err)
	}

	cfg.Fetch.Profile = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown profile should be rejected")
	}
}

func TestFetchOptions(t *testing.T) {
	cfg := DefaultConfig()
	if n := len(cfg.FetchOptions()); n != 1 {
		t.Errorf("default config should set only the base URL, got %d options", n)
	}

	cfg.Fetch.BaseURL = ""
	cfg.Fetch.UserAgent = "hntop-test/1"
	if n := len(cfg.FetchOptions()); n != 1 {
		t.Errorf("expected only the user agent option, got %d", n)
	}
}

func TestConfigPath(t *testing.T) {
	if got := ConfigPath("/data"); got != filepath.Join("/data", "config.json") {
		t.Errorf("ConfigPath = %q", got)
	}
}
