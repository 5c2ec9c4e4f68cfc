package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestResolveMergesOverDefaults(t *testing.T) {
	t.Setenv("MOMENTNAV_TEST_ROOT", "/srv/shows")
	path := writeConfig(t, `
library:
  roots:
    - ${MOMENTNAV_TEST_ROOT}
    - /mnt/archive
timecode:
  default_fps: 23.976
editor:
  name: ffmpeg
  fetch_timeout: 30s
`)

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if got := strings.Join(cfg.Library.Roots, ","); got != "/srv/shows,/mnt/archive" {
		t.Errorf("roots = %q", got)
	}
	if cfg.Timecode.DefaultFPS != 23.976 {
		t.Errorf("default_fps = %v", cfg.Timecode.DefaultFPS)
	}
	if cfg.Timecode.MinClipSeconds != 10 {
		t.Errorf("min_clip_seconds should keep its default, got %v", cfg.Timecode.MinClipSeconds)
	}
	if cfg.Editor.Name != "ffmpeg" || cfg.Editor.FetchTimeout != 30*time.Second {
		t.Errorf("unexpected editor config: %+v", cfg.Editor)
	}
	if cfg.Library.Concurrency != 8 {
		t.Errorf("concurrency = %d", cfg.Library.Concurrency)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"zero fps", "timecode:\n  default_fps: 0\n", "timecode"},
		{"negative clip", "timecode:\n  min_clip_seconds: -1\n", "timecode"},
		{"no editor", "editor:\n  name: \"\"\n", "editor"},
		{"bad concurrency", "library:\n  concurrency: -1\n", "library"},
		{"empty root", "library:\n  roots: [\"\"]\n", "library"},
		{"malformed yaml", "library: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveMissingExplicitFile(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestDefaultsAreValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
