package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.viam.com/utils"

	"go.viam.com/laneplanner/logging"
)

// DefaultWatchDelay coalesces the burst of events an editor produces when saving.
const DefaultWatchDelay = 250 * time.Millisecond

// Watcher re-reads a config file when it changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	logger   logging.Logger
	onChange func(*Config)
	debounce func(func())

	workers sync.WaitGroup
}

// Watch calls onChange with every valid config written to path. Invalid configs are logged
// and skipped. The directory is watched so that files replaced by rename are followed.
func Watch(path string, delay time.Duration, logger logging.Logger, onChange func(*Config)) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		utils.UncheckedError(fw.Close())
		return nil, err
	}
	w := &Watcher{
		watcher:  fw,
		path:     abs,
		logger:   logger,
		onChange: onChange,
		debounce: debounce.New(delay),
	}
	w.workers.Add(1)
	utils.PanicCapturingGo(func() {
		defer w.workers.Done()
		w.run()
	})
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.debounce(w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Read(w.path)
	if err != nil {
		w.logger.Warnw("ignoring invalid config", "path", w.path, "error", err)
		return
	}
	w.logger.Infow("config changed", "path", w.path)
	w.onChange(cfg)
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.workers.Wait()
	return err
}
