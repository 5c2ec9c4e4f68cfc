// Package navigator is the application layer shared by the CLI and the HTTP
// server: transcript search over the library, playback at a moment and
// pushing a padded clip to the editor.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/media"
	"github.com/mgpai22/momentnav/internal/player"
	"github.com/mgpai22/momentnav/internal/search"
	"github.com/mgpai22/momentnav/internal/subtitle"
	"github.com/mgpai22/momentnav/internal/timecode"
)

// the transcript has no linked media file
var ErrNoMedia = errors.New("no media linked to transcript")

type Options struct {
	Roots          []string
	Concurrency    int
	DefaultFPS     float64
	MinClipSeconds float64
}

// parsed transcripts for one links snapshot, replaced wholesale
type docCache struct {
	links *media.Links
	docs  map[string]subtitle.Document
}

type Navigator struct {
	opts     Options
	library  *media.Library
	client   editor.Client
	launcher player.Launcher
	logger   *logging.Logger

	docs atomic.Pointer[docCache]
}

// New builds a navigator over an empty library; call Rebuild before
// searching. client and launcher may be nil when unused.
func New(opts Options, client editor.Client, launcher player.Launcher, logger *logging.Logger) *Navigator {
	logger = logging.OrNop(logger)
	return &Navigator{
		opts:     opts,
		library:  media.NewLibrary(logger),
		client:   client,
		launcher: launcher,
		logger:   logger,
	}
}

func (n *Navigator) Links() *media.Links {
	return n.library.Links()
}

// Rebuild rescans the roots and installs fresh links
func (n *Navigator) Rebuild(ctx context.Context) (*media.Links, error) {
	return n.library.Rebuild(ctx, n.opts.Roots)
}

// show directories across all roots, sorted and deduplicated
func (n *Navigator) Shows() ([]string, error) {
	seen := make(map[string]struct{})
	var shows []string
	for _, root := range n.opts.Roots {
		names, err := media.Shows(root)
		if err != nil {
			n.logger.Warnw("Skipping library root", "root", root, "error", err)
			continue
		}
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			shows = append(shows, name)
		}
	}
	sort.Strings(shows)
	return shows, nil
}

// transcripts to search; all of them when show is empty
func (n *Navigator) transcripts(links *media.Links, show string) []string {
	if show == "" {
		return links.Transcripts()
	}
	var paths []string
	for _, root := range links.Roots() {
		paths = append(paths, links.TranscriptsUnder(filepath.Join(root, show))...)
	}
	return paths
}

// Search finds keyword in the library's transcripts, optionally limited to
// one show
func (n *Navigator) Search(ctx context.Context, keyword, show string) ([]search.Result, error) {
	if keyword == "" {
		return nil, nil
	}
	links := n.library.Links()
	docs, err := n.documents(ctx, links, n.transcripts(links, show))
	if err != nil {
		return nil, err
	}
	return search.Transcripts(docs, keyword), nil
}

// Documents returns parsed transcripts in path order, reusing earlier parses
// of the same links snapshot.
func (n *Navigator) Documents(ctx context.Context, paths []string) ([]subtitle.Document, error) {
	return n.documents(ctx, n.library.Links(), paths)
}

func (n *Navigator) documents(ctx context.Context, links *media.Links, paths []string) ([]subtitle.Document, error) {
	cache := n.docs.Load()
	if cache == nil || cache.links != links {
		cache = &docCache{links: links, docs: map[string]subtitle.Document{}}
	}

	var missing []string
	for _, p := range paths {
		if _, ok := cache.docs[p]; !ok {
			missing = append(missing, p)
		}
	}

	if len(missing) > 0 {
		parsed, err := subtitle.OpenAll(ctx, missing, n.opts.Concurrency, n.logger)
		if err != nil {
			return nil, err
		}
		next := &docCache{links: links, docs: make(map[string]subtitle.Document, len(cache.docs)+len(parsed))}
		for p, d := range cache.docs {
			next.docs[p] = d
		}
		for _, d := range parsed {
			next.docs[d.Path] = d
		}
		n.docs.Store(next)
		cache = next
	}

	docs := make([]subtitle.Document, 0, len(paths))
	for _, p := range paths {
		if d, ok := cache.docs[p]; ok {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (n *Navigator) mediaFor(transcript string) (string, error) {
	m, ok := n.library.Links().Media(transcript)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoMedia, filepath.Base(transcript))
	}
	return m, nil
}

// Play opens the media linked to transcript at the given moment
func (n *Navigator) Play(ctx context.Context, transcript string, at timecode.Timecode) error {
	if n.launcher == nil {
		return errors.New("no media player configured")
	}
	m, err := n.mediaFor(transcript)
	if err != nil {
		return err
	}
	return n.launcher.PlayAt(ctx, m, at)
}

// FrameRate of the media linked to transcript. Probe failures fall back to
// the configured default.
func (n *Navigator) FrameRate(ctx context.Context, transcript string) float64 {
	if n.client != nil {
		fps, err := n.library.Links().FrameRate(ctx, transcript, n.client)
		if err == nil {
			return fps
		}
		n.logger.Warnw("Frame rate probe failed, using default",
			"transcript", transcript,
			"default_fps", n.opts.DefaultFPS,
			"error", err,
		)
	}
	return n.opts.DefaultFPS
}

// Push places the padded [start, end] of the transcript's media on the
// editor's timeline and returns the frame range used.
func (n *Navigator) Push(ctx context.Context, transcript string, start, end timecode.Timecode) (timecode.Range, error) {
	if n.client == nil {
		return timecode.Range{}, fmt.Errorf("%w: no editor configured", editor.ErrUnavailable)
	}
	m, err := n.mediaFor(transcript)
	if err != nil {
		return timecode.Range{}, err
	}

	if err := n.client.EnsureReady(ctx); err != nil {
		return timecode.Range{}, err
	}

	fps := n.FrameRate(ctx, transcript)
	r := timecode.PaddedRange(start, end, fps, n.opts.MinClipSeconds)

	if err := n.client.ImportMedia(ctx, m); err != nil {
		return timecode.Range{}, err
	}
	if err := n.client.ImportClip(ctx, m, r); err != nil {
		return timecode.Range{}, err
	}

	n.logger.Infow("Pushed clip to editor",
		"media", m,
		"fps", fps,
		"start_frame", r.StartFrame,
		"end_frame", r.EndFrame,
	)
	return r, nil
}
