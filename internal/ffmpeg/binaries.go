package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	FFmpegEnv  = "MOMENTNAV_FFMPEG_PATH"
	FFprobeEnv = "MOMENTNAV_FFPROBE_PATH"
)

var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure locates ffmpeg and ffprobe once per process
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = Locate(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// Locate resolves both binaries: environment overrides first, then $PATH,
// then a sibling of whichever one was found.
func Locate(getenv func(string) string, lookPath func(string) (string, error)) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv(FFmpegEnv),
		FFprobe: getenv(FFprobeEnv),
	}

	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}

	// a custom ffmpeg build usually ships ffprobe next to it
	if paths.FFprobe == "" && paths.FFmpeg != "" {
		paths.FFprobe = sibling(paths.FFmpeg, "ffprobe")
	}
	if paths.FFmpeg == "" && paths.FFprobe != "" {
		paths.FFmpeg = sibling(paths.FFprobe, "ffmpeg")
	}

	if !fileExists(paths.FFmpeg) || !fileExists(paths.FFprobe) {
		return BinaryPaths{}, fmt.Errorf(
			"%w: install ffmpeg or set %s and %s",
			ErrNotFound, FFmpegEnv, FFprobeEnv,
		)
	}
	return paths, nil
}

func sibling(path, name string) string {
	return filepath.Join(filepath.Dir(path), name+executableSuffix())
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
