package media

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mgpai22/momentnav/internal/subtitle"
)

// transcript and media files found under a root, each sorted
type Files struct {
	Transcripts []string
	Media       []string
}

// Walk collects transcripts and media files under root, recursing into every
// subdirectory except hidden and version-control ones. Unreadable entries
// below root are skipped.
func Walk(ctx context.Context, root string) (Files, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Files{}, fmt.Errorf("library root: %w", err)
	}
	if !info.IsDir() {
		return Files{}, fmt.Errorf("library root is not a directory: %s", root)
	}

	var files Files
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case subtitle.IsTranscriptFile(path):
			files.Transcripts = append(files.Transcripts, path)
		case IsMediaFile(path):
			files.Media = append(files.Media, path)
		}
		return nil
	})
	if err != nil {
		return Files{}, err
	}

	sort.Strings(files.Transcripts)
	sort.Strings(files.Media)
	return files, nil
}

// Shows lists the non-hidden top-level directories of root, sorted. Each one
// is a collection that can be searched on its own.
func Shows(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}

	var shows []string
	for _, e := range entries {
		if e.IsDir() && !skipDir(e.Name()) {
			shows = append(shows, e.Name())
		}
	}
	sort.Strings(shows)
	return shows, nil
}
