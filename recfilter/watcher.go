package recfilter

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/utils"
)

// DefaultSettleTime is how long a filter file must stay quiet before a change is reported.
const DefaultSettleTime = 100 * time.Millisecond

// Watcher reports changes to a filter file. A burst of writes is reported once, after the file
// has been quiet for the settle time, and at most one notification is pending at a time.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	changes  chan struct{}
	debounce func(func())
	workers  *utils.BackgroundWorkers
	logger   logging.Logger
}

// NewWatcher starts watching path. The containing directory is watched rather than the file
// itself so that editors which replace the file on save are still seen.
func NewWatcher(path string, logger logging.Logger) (*Watcher, error) {
	return newWatcher(path, DefaultSettleTime, logger)
}

func newWatcher(path string, settle time.Duration, logger logging.Logger) (*Watcher, error) {
	if path == "" {
		path = DefaultPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		goutils.UncheckedError(fsWatcher.Close())
		return nil, errors.Wrapf(err, "cannot watch %q", filepath.Dir(abs))
	}

	w := &Watcher{
		path:     abs,
		watcher:  fsWatcher,
		changes:  make(chan struct{}, 1),
		debounce: debounce.New(settle),
		logger:   logger,
	}
	w.workers = utils.NewBackgroundWorkers(w.run)
	logger.Debugw("watching filter file", "path", abs)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debugw("filter file changed", "path", w.path, "op", event.Op.String())
			w.debounce(w.notify)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("filter file watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changes delivers a value after the file has been written.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.workers.Stop()
	return w.watcher.Close()
}
