package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewWritesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, log.DebugLevel).WithPrefix("fetch")

	logger.Debug("page fetched", "page", 2, "hits", 30)

	out := buf.String()
	for _, want := range []string{"fetch", "page fetched", "page=2", "hits=30"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, log.WarnLevel)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn should be written at warn level")
	}
}

func TestInitCreatesDatedFile(t *testing.T) {
	dir := t.TempDir()

	if err := Init(dir, log.InfoLevel); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Logger.WithPrefix("test").Info("hello")
	Close()

	path := filepath.Join(dir, "logs", "hntop-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "hello") || !strings.Contains(out, "session=") {
		t.Errorf("unexpected log contents: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != log.DebugLevel {
		t.Error("debug should parse")
	}
	if ParseLevel("nonsense") != log.InfoLevel {
		t.Error("unknown levels should default to info")
	}
}
