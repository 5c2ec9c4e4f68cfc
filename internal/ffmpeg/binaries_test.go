package ffmpeg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func noPath(string) (string, error) { return "", errors.New("not found") }

func TestLocateUsesEnvironment(t *testing.T) {
	dir := t.TempDir()
	ff := filepath.Join(dir, "my-ffmpeg")
	fp := filepath.Join(dir, "my-ffprobe")
	touch(t, ff)
	touch(t, fp)

	env := map[string]string{FFmpegEnv: ff, FFprobeEnv: fp}
	paths, err := Locate(func(k string) string { return env[k] }, noPath)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if paths.FFmpeg != ff || paths.FFprobe != fp {
		t.Errorf("unexpected paths: %+v", paths)
	}
}

func TestLocateFindsSibling(t *testing.T) {
	dir := t.TempDir()
	ff := filepath.Join(dir, "ffmpeg"+executableSuffix())
	fp := filepath.Join(dir, "ffprobe"+executableSuffix())
	touch(t, ff)
	touch(t, fp)

	env := map[string]string{FFmpegEnv: ff}
	paths, err := Locate(func(k string) string { return env[k] }, noPath)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if paths.FFprobe != fp {
		t.Errorf("FFprobe = %q, want %q", paths.FFprobe, fp)
	}
}

func TestLocateNotFound(t *testing.T) {
	_, err := Locate(func(string) string { return "" }, noPath)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
