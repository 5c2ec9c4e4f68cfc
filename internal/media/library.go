package media

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/momentnav/internal/logging"
)

// anything able to report a media file's frame rate
type FrameRateProber interface {
	ProbeFrameRate(ctx context.Context, mediaPath string) (float64, error)
}

// Links is one immutable transcript -> media snapshot. Only the lazily
// probed frame rates change after construction.
type Links struct {
	roots       []string
	transcripts []string
	media       map[string]string

	mu  sync.Mutex
	fps map[string]float64
}

func newLinks(roots, transcripts []string, media map[string]string) *Links {
	return &Links{
		roots:       roots,
		transcripts: transcripts,
		media:       media,
		fps:         make(map[string]float64),
	}
}

// media linked to transcript, if any
func (l *Links) Media(transcript string) (string, bool) {
	m, ok := l.media[transcript]
	return m, ok
}

// number of linked transcripts
func (l *Links) Len() int {
	return len(l.media)
}

// every transcript found, linked or not, sorted
func (l *Links) Transcripts() []string {
	return append([]string(nil), l.transcripts...)
}

// transcripts located under dir, sorted
func (l *Links) TranscriptsUnder(dir string) []string {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var out []string
	for _, t := range l.transcripts {
		if strings.HasPrefix(t, prefix) {
			out = append(out, t)
		}
	}
	return out
}

// transcripts that found no media file
func (l *Links) Unmatched() []string {
	var out []string
	for _, t := range l.transcripts {
		if _, ok := l.media[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func (l *Links) Roots() []string {
	return append([]string(nil), l.roots...)
}

// FrameRate returns the frame rate of the media linked to transcript,
// probing it once and caching the value for the lifetime of this snapshot.
func (l *Links) FrameRate(
	ctx context.Context,
	transcript string,
	prober FrameRateProber,
) (float64, error) {
	mediaPath, ok := l.media[transcript]
	if !ok {
		return 0, fmt.Errorf("no media linked to %s", filepath.Base(transcript))
	}

	l.mu.Lock()
	fps, cached := l.fps[transcript]
	l.mu.Unlock()
	if cached {
		return fps, nil
	}

	fps, err := prober.ProbeFrameRate(ctx, mediaPath)
	if err != nil {
		return 0, fmt.Errorf("failed to probe frame rate: %w", err)
	}
	if fps <= 0 {
		return 0, fmt.Errorf("invalid frame rate %v for %s", fps, filepath.Base(mediaPath))
	}

	l.mu.Lock()
	l.fps[transcript] = fps
	l.mu.Unlock()
	return fps, nil
}

// Library holds the current Links snapshot. Rebuild replaces it wholesale;
// readers keep using whichever snapshot they loaded.
type Library struct {
	logger *logging.Logger
	links  atomic.Pointer[Links]
}

func NewLibrary(logger *logging.Logger) *Library {
	l := &Library{logger: logging.OrNop(logger)}
	l.links.Store(newLinks(nil, nil, map[string]string{}))
	return l
}

// current snapshot; never nil
func (l *Library) Links() *Links {
	return l.links.Load()
}

// Rebuild walks every root in parallel, matches transcripts to media and
// installs the result. A root that cannot be walked is logged and skipped.
func (l *Library) Rebuild(ctx context.Context, roots []string) (*Links, error) {
	walked := make([]Files, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			files, err := Walk(gctx, root)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				l.logger.Warnw("Skipping library root",
					"root", root,
					"error", err,
				)
				return nil
			}
			walked[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var transcripts, mediaFiles []string
	for _, files := range walked {
		transcripts = append(transcripts, files.Transcripts...)
		mediaFiles = append(mediaFiles, files.Media...)
	}
	sort.Strings(transcripts)
	sort.Strings(mediaFiles)

	links := newLinks(
		append([]string(nil), roots...),
		transcripts,
		Match(transcripts, mediaFiles),
	)
	l.links.Store(links)

	l.logger.Infow("Mapped transcripts to media",
		"transcripts", len(transcripts),
		"media", len(mediaFiles),
		"linked", links.Len(),
	)
	return links, nil
}
