// Package watch reruns a function whenever any of a set of files changes on disk.
//
// Parent directories are watched rather than the files themselves: editors commonly save by writing a temporary file and renaming it over the original, which would otherwise
// detach a per-file watch. Bursts of events are coalesced with a short debounce.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period used when Options.Debounce is 0.
const DefaultDebounce = 100 * time.Millisecond

// Options configures Run.
type Options struct {
	Debounce time.Duration
	Logger   *zerolog.Logger // nil disables logging.

	// ready, if set, is called once the watches are registered and the initial run is done. Tests use it to know when edits will be observed.
	ready func()
}

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Run calls fn once, then again after each burst of changes to any of paths, until ctx is done. Errors from fn are logged and do not stop watching. Run returns nil when ctx
// is canceled, or an error if the watches can't be set up.
func Run(ctx context.Context, paths []string, fn func() error, opts Options) error {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	want := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		want[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
		log.Debug().Str("dir", dir).Msg("watching")
	}

	runOnce := func() {
		if err := fn(); err != nil {
			log.Warn().Err(err).Msg("rerun failed")
		}
	}
	runOnce()
	if opts.ready != nil {
		opts.ready()
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&relevantOps == 0 || !want[filepath.Clean(ev.Name)] {
				continue
			}
			log.Debug().Str("file", ev.Name).Stringer("op", ev.Op).Msg("change")
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		case <-timer.C:
			runOnce()
		}
	}
}
