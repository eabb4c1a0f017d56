package vault

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event kinds emitted by Watch.
const (
	EventCreated  = "created"
	EventModified = "modified"
	EventDeleted  = "deleted"
	EventRenamed  = "renamed"
)

// Event describes one vault change.
type Event struct {
	Kind string
	Path string // vault-relative, slash-separated
}

// Watch starts an fsnotify watcher on the vault root and forwards document
// change events until ctx is cancelled. New directories created at runtime
// are automatically added to the watch list.
//
// fsnotify fires Rename on the old path only; the new path arrives as a
// separate Create event when it lands inside a watched directory. Both are
// forwarded, and the consumer's full rescan reconciles whatever remains.
func Watch(ctx context.Context, root string, logger *slog.Logger, emit func(Event)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher and surface any .md files
			// already inside as create events.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					emitNewDir(root, absPath, emit)
					continue
				}
			}

			// Only process .md files from here on.
			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				emit(Event{Kind: EventCreated, Path: rel})
			case ev.Op&fsnotify.Write != 0:
				emit(Event{Kind: EventModified, Path: rel})
			case ev.Op&fsnotify.Remove != 0:
				emit(Event{Kind: EventDeleted, Path: rel})
			case ev.Op&fsnotify.Rename != 0:
				emit(Event{Kind: EventRenamed, Path: rel})
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// emitNewDir surfaces any .md files found in a newly created directory.
func emitNewDir(root, dirPath string, emit func(Event)) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		emit(Event{Kind: EventCreated, Path: filepath.ToSlash(rel)})
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
