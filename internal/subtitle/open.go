package subtitle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/momentnav/internal/logging"
)

const defaultConcurrency = 8

// transcript format implied by the extension of path
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, true
	case ".txt":
		return FormatTXT, true
	default:
		return "", false
	}
}

// reports whether path has a transcript extension
func IsTranscriptFile(path string) bool {
	_, ok := FormatOf(path)
	return ok
}

// reads and parses one transcript; only I/O fails
func Open(path string) (Document, error) {
	if !IsTranscriptFile(path) {
		return Document{}, fmt.Errorf("unsupported transcript format: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read transcript: %w", err)
	}

	doc := Parse(data)
	doc.Path = path
	return doc, nil
}

// OpenAll parses paths with up to concurrency workers. The result keeps the
// order of paths; files that cannot be read are logged and left out.
func OpenAll(
	ctx context.Context,
	paths []string,
	concurrency int,
	logger *logging.Logger,
) ([]Document, error) {
	logger = logging.OrNop(logger)
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	slots := make([]*Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := Open(path)
			if err != nil {
				logger.Warnw("Skipping transcript",
					"path", path,
					"error", err,
				)
				return nil
			}
			if doc.Dropped > 0 {
				logger.Debugw("Dropped malformed blocks",
					"path", path,
					"dropped", doc.Dropped,
				)
			}
			slots[i] = &doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(paths))
	for _, doc := range slots {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}
