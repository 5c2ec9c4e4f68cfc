package media

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/subtitle"
)

const watchDebounce = 200 * time.Millisecond

// Watch observes roots until ctx is cancelled and calls onChange once a burst
// of transcript, media or directory events has settled. Directories created
// later are added to the watch list.
func Watch(
	ctx context.Context,
	roots []string,
	logger *logging.Logger,
	onChange func(),
) error {
	logger = logging.OrNop(logger)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range roots {
		if err := addDirsRecursive(w, root); err != nil {
			logger.Warnw("watcher: cannot watch root", "root", root, "error", err)
		}
	}
	logger.Debugw("watcher: started", "roots", roots)

	var debounce *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(watchDebounce)
			fire = debounce.C
			return
		}
		if !debounce.Stop() {
			select {
			case <-debounce.C:
			default:
			}
		}
		debounce.Reset(watchDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Debugw("watcher: stopped")
			return nil

		case <-fire:
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if skipDir(filepath.Base(ev.Name)) {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warnw("watcher: add new dir failed", "path", ev.Name, "error", addErr)
					}
					schedule()
					continue
				}
			}

			if subtitle.IsTranscriptFile(ev.Name) || IsMediaFile(ev.Name) ||
				ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debugw("watcher: change", "path", ev.Name, "op", ev.Op.String())
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Errorw("watcher: error", "error", watchErr)
		}
	}
}

// adds root and its subdirectories, skipping hidden and VCS ones
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
