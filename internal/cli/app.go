package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/navigator"
	"github.com/mgpai22/momentnav/internal/player"
)

var errNoRoots = errors.New("no library roots: pass --root or set library.roots in the config file")

// editor client from the configured registry entry, serialized by a worker
func newEditor() (*editor.Worker, error) {
	client, err := editor.NewRegistry().New(cfg.Editor.Name, editor.Options{
		BridgeCommand: cfg.Editor.BridgeCommand,
		ExportDir:     cfg.Editor.ExportDir,
		CallTimeout:   cfg.Editor.CallTimeout,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return editor.NewWorker(client), nil
}

type app struct {
	nav    *navigator.Navigator
	editor *editor.Worker
}

func (a *app) Close() {
	if a.editor != nil {
		a.editor.Close()
	}
}

// newApp scans the library. withEditor also connects the configured editor;
// the player is always set up.
func newApp(ctx context.Context, withEditor bool) (*app, error) {
	if len(cfg.Library.Roots) == 0 {
		return nil, errNoRoots
	}

	a := &app{}
	var client editor.Client
	if withEditor {
		w, err := newEditor()
		if err != nil {
			return nil, err
		}
		a.editor = w
		client = w
	}

	launcher, err := player.NewCommandLauncher(cfg.Player.Command, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.nav = navigator.New(navigator.Options{
		Roots:          cfg.Library.Roots,
		Concurrency:    cfg.Library.Concurrency,
		DefaultFPS:     cfg.Timecode.DefaultFPS,
		MinClipSeconds: cfg.Timecode.MinClipSeconds,
	}, client, launcher, logger)

	links, err := a.nav.Rebuild(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to scan library: %w", err)
	}
	logger.Debugw("Library scanned",
		"roots", cfg.Library.Roots,
		"transcripts", len(links.Transcripts()),
		"linked", links.Len(),
	)
	return a, nil
}
