// Package watch re-runs a callback when watched source files change.
package watch

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/visast/pkg/errors"
)

const (
	// DefaultQuiet is how long the files must stay unchanged before a batch
	// is delivered.
	DefaultQuiet = 200 * time.Millisecond
	// DefaultMaxWait bounds the delay under a continuous stream of writes.
	DefaultMaxWait = 2 * time.Second
)

// Watcher reports changes to a fixed set of files.
//
// The parent directories are watched rather than the files themselves so
// that editors which save by rename-and-replace keep triggering events.
type Watcher struct {
	files   map[string]bool
	dirs    []string
	Quiet   time.Duration
	MaxWait time.Duration
	Logger  *log.Logger
}

// New returns a watcher for paths.
func New(paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to watch")
	}
	w := &Watcher{
		files:   make(map[string]bool, len(paths)),
		Quiet:   DefaultQuiet,
		MaxWait: DefaultMaxWait,
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", p)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !slices.Contains(w.dirs, dir) {
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Run blocks until ctx is done, calling fn with the absolute paths of the
// files changed in each debounced batch. fn runs on the watcher goroutine;
// events arriving meanwhile are batched for the next call.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", dir)
		}
		w.Logger.Debug("watching", "dir", dir)
	}

	changes := make(chan string)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				name := filepath.Clean(ev.Name)
				if !w.files[name] {
					continue
				}
				select {
				case changes <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.Logger.Warn("watch error", "err", err)
			}
		}
	}()

	debounce(ctx, changes, w.Quiet, w.MaxWait, fn)
	return nil
}

// debounce groups paths from in until the stream has been quiet for quiet,
// or maxWait has passed since the first path of the batch. Duplicates within
// a batch are dropped; order of first arrival is kept.
func debounce(ctx context.Context, in <-chan string, quiet, maxWait time.Duration, fn func([]string)) {
	var (
		batch    []string
		quietC   <-chan time.Time
		maxC     <-chan time.Time
		quietT   *time.Timer
		deadline *time.Timer
	)
	stop := func() {
		if quietT != nil {
			quietT.Stop()
		}
		if deadline != nil {
			deadline.Stop()
		}
		quietC, maxC = nil, nil
	}
	flush := func() {
		stop()
		if len(batch) > 0 {
			fn(batch)
			batch = nil
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-in:
			if !ok {
				flush()
				return
			}
			if !slices.Contains(batch, p) {
				batch = append(batch, p)
			}
			if quietT == nil {
				quietT = time.NewTimer(quiet)
			} else {
				quietT.Reset(quiet)
			}
			quietC = quietT.C
			if maxC == nil {
				deadline = time.NewTimer(maxWait)
				maxC = deadline.C
			}
		case <-quietC:
			flush()
		case <-maxC:
			flush()
		}
	}
}
