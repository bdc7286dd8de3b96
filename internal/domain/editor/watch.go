package editor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the document's file on disk until ctx is done. External
// writes are reloaded into a document without unsaved edits and announced as
// ContentChanged{Source: SourceDisk}. The parent directory is watched so
// editors that save through rename are still seen.
func Watch(ctx context.Context, doc *FileDocument, logger *slog.Logger) error {
	if !doc.HasActiveEditor() {
		return ErrNoDocument
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("editor: watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(doc.path)); err != nil {
		return fmt.Errorf("editor: watch %q: %w", doc.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != doc.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if _, err := doc.reload(); err != nil {
				logger.Debug("editor reload failed", "path", doc.path, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("editor watch error", "path", doc.path, "error", err)
		}
	}
}
