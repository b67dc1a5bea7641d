package app

import (
	"context"

	"go.uber.org/zap"

	fsw "github.com/corey/chatmon/internal/adapters/fsnotify"
	"github.com/corey/chatmon/internal/adapters/source"
	"github.com/corey/chatmon/internal/logger"
)

// startWatcher watches a file dataset and reloads it on change. Remote and
// embedded datasets are not watched.
func (a *App) startWatcher() error {
	if !a.Settings.Watch {
		return nil
	}
	fs, ok := a.Source.(*source.FileSource)
	if !ok {
		return nil
	}
	if a.Watcher == nil {
		w, err := fsw.NewWatcher()
		if err != nil {
			return err
		}
		a.Watcher = w
	}
	if err := a.Watcher.Watch(fs.Path(), a.onDatasetChanged); err != nil {
		return err
	}
	logger.Log.Info("watching dataset", zap.String("path", fs.Path()))
	return nil
}

// onDatasetChanged reloads after the watcher reports a write, create,
// rename or removal. A removed file fails the fetch and the current table
// stays active.
func (a *App) onDatasetChanged(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.loadTimeout())
	defer cancel()

	result, err := a.Reload(ctx)
	if err != nil {
		logger.Log.Warn("dataset reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Log.Info("dataset reloaded",
		zap.String("path", path),
		zap.Int("entries", result.Entries),
		zap.Int("dropped", result.Dropped),
	)
}
