// Package player opens media at a given moment in an external player.
package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/timecode"
)

// Launcher starts playback and returns without waiting for the player.
type Launcher interface {
	PlayAt(ctx context.Context, mediaPath string, at timecode.Timecode) error
}

// placeholders expanded in a command template
const (
	MediaPlaceholder   = "{media}"
	StartPlaceholder   = "{start}"
	SecondsPlaceholder = "{seconds}"
)

// known MPC-HC install locations, most common first
var mpcPaths = []string{
	`C:\Program Files\MPC-HC\mpc-hc64.exe`,
	`C:\Program Files (x86)\MPC-HC\mpc-hc.exe`,
	`C:\Program Files (x86)\K-Lite Codec Pack\MPC-HC64\mpc-hc64.exe`,
	`C:\Program Files\K-Lite Codec Pack\MPC-HC64\mpc-hc64.exe`,
}

// CommandLauncher runs a player command built from a template such as
//
//	mpv --start={seconds} {media}
//
// and falls back to the OS default opener (without seeking) when the player
// cannot be started.
type CommandLauncher struct {
	argv   []string
	goos   string
	logger *logging.Logger
	start  func(argv []string) error
}

var _ Launcher = (*CommandLauncher)(nil)

// NewCommandLauncher parses template; an empty template picks a player
// installed on this machine.
func NewCommandLauncher(template string, logger *logging.Logger) (*CommandLauncher, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate(runtime.GOOS, fileExists, exec.LookPath)
	}

	var argv []string
	if template != "" {
		var err error
		argv, err = shlex.Split(template)
		if err != nil {
			return nil, fmt.Errorf("invalid player command: %w", err)
		}
	}

	return &CommandLauncher{
		argv:   argv,
		goos:   runtime.GOOS,
		logger: logging.OrNop(logger),
		start:  startDetached,
	}, nil
}

// DefaultTemplate returns the command template for the first player found:
// MPC-HC on Windows, otherwise mpv or vlc. It is "" when none is installed.
func DefaultTemplate(goos string, exists func(string) bool, lookPath func(string) (string, error)) string {
	if goos == "windows" {
		for _, p := range mpcPaths {
			if exists(p) {
				return fmt.Sprintf("'%s' %s /start %s", p, MediaPlaceholder, StartPlaceholder)
			}
		}
	}
	if _, err := lookPath("mpv"); err == nil {
		return "mpv --start=" + SecondsPlaceholder + " " + MediaPlaceholder
	}
	if _, err := lookPath("vlc"); err == nil {
		return "vlc --start-time=" + SecondsPlaceholder + " " + MediaPlaceholder
	}
	return ""
}

// Expand substitutes the placeholders. The media path is appended when the
// template does not mention it.
func Expand(template []string, mediaPath string, at timecode.Timecode) []string {
	r := strings.NewReplacer(
		MediaPlaceholder, mediaPath,
		StartPlaceholder, at.Clock(),
		SecondsPlaceholder, strconv.FormatFloat(at.ToSeconds(), 'f', 3, 64),
	)

	out := make([]string, 0, len(template)+1)
	hasMedia := false
	for _, arg := range template {
		if strings.Contains(arg, MediaPlaceholder) {
			hasMedia = true
		}
		out = append(out, r.Replace(arg))
	}
	if !hasMedia {
		out = append(out, mediaPath)
	}
	return out
}

func (l *CommandLauncher) PlayAt(ctx context.Context, mediaPath string, at timecode.Timecode) error {
	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("media not accessible: %w", err)
	}

	if len(l.argv) > 0 {
		argv := Expand(l.argv, mediaPath, at)
		err := l.start(argv)
		if err == nil {
			l.logger.Infow("Started player", "media", mediaPath, "at", at.Clock(), "command", argv[0])
			return nil
		}
		l.logger.Warnw("Player failed to start, using default opener", "command", argv[0], "error", err)
	}

	if err := l.start(openerArgv(l.goos, mediaPath)); err != nil {
		return fmt.Errorf("failed to open %s: %w", mediaPath, err)
	}
	l.logger.Infow("Opened media with default application (no seek)", "media", mediaPath)
	return nil
}

func openerArgv(goos, path string) []string {
	switch goos {
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", path}
	case "darwin":
		return []string{"open", path}
	default:
		return []string{"xdg-open", path}
	}
}

// starts argv and reaps it in the background
func startDetached(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
