// Package config holds the momentnav settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const FileName = "config.yaml"

// Config is the whole settings file
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Timecode TimecodeConfig `yaml:"timecode"`
	Editor   EditorConfig   `yaml:"editor"`
	Player   PlayerConfig   `yaml:"player"`
	HTTP     HTTPConfig     `yaml:"http"`
	Verbose  bool           `yaml:"verbose"`
}

func (c *Config) Validate() error {
	if err := c.Library.Validate(); err != nil {
		return fmt.Errorf("library: %w", err)
	}
	if err := c.Timecode.Validate(); err != nil {
		return fmt.Errorf("timecode: %w", err)
	}
	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// directories searched for transcripts and media
type LibraryConfig struct {
	Roots []string `yaml:"roots"`
	// parallel transcript parses
	Concurrency int `yaml:"concurrency"`
	// rebuild links when files change (serve only)
	Watch bool `yaml:"watch"`
}

func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(256)),
		validation.Field(&c.Roots, validation.Each(validation.Required)),
	)
}

type TimecodeConfig struct {
	// used when the media frame rate cannot be probed
	DefaultFPS     float64 `yaml:"default_fps"`
	MinClipSeconds float64 `yaml:"min_clip_seconds"`
}

func (c *TimecodeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultFPS, validation.Required, validation.Min(1.0), validation.Max(240.0)),
		validation.Field(&c.MinClipSeconds, validation.Min(0.0)),
	)
}

type EditorConfig struct {
	Name          string        `yaml:"name"`
	BridgeCommand string        `yaml:"bridge_command"`
	ExportDir     string        `yaml:"export_dir"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
	// bounds a whole timeline cache build; 0 waits indefinitely
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.CallTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0))),
	)
}

type PlayerConfig struct {
	// command template with {media}, {start} and {seconds}; empty picks an
	// installed player
	Command string `yaml:"command"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Address, validation.Required),
	)
}

func NewDefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Concurrency: 8,
		},
		Timecode: TimecodeConfig{
			DefaultFPS:     24,
			MinClipSeconds: 10,
		},
		Editor: EditorConfig{
			Name:      "bridge",
			ExportDir: "clips",
		},
		HTTP: HTTPConfig{
			Address: "127.0.0.1:8765",
		},
	}
}

// DefaultPath is config.yaml under the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return FileName
	}
	return filepath.Join(dir, "momentnav", FileName)
}

// Resolve loads path over the defaults. An empty path tries DefaultPath
// and falls back to the defaults when that file does not exist.
func Resolve(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
	}

	if err := Load(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
