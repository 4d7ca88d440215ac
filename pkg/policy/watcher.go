package policy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reparses a policy file whenever it is written or replaced and
// hands the result to a callback.
type Watcher struct {
	path     string
	onChange func(*Document) error
	logger   *zap.Logger
}

func NewWatcher(path string, onChange func(*Document) error, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{path: path, onChange: onChange, logger: logger}
}

// Run blocks until ctx is cancelled or the underlying watcher fails. The
// parent directory is watched so editors that replace the file by rename
// are picked up too.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.logger.Info("watching policy file", zap.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload(abs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("policy watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload(path string) {
	doc, err := ParseFile(path)
	if err != nil {
		w.logger.Error("failed to parse policy", zap.String("path", path), zap.Error(err))
		return
	}
	if err := w.onChange(doc); err != nil {
		w.logger.Error("failed to apply policy", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("policy reloaded", zap.String("path", path), zap.Int("roles", len(doc.Roles)))
}
