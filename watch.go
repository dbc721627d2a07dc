package dirlist

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultWatchMinIdle is the relist coalescing window for [Watch]. A burst of
// filesystem events (an unpack, a build) triggers one relist, not hundreds.
const defaultWatchMinIdle = 250 * time.Millisecond

// Watch lists roots, delivers the result to fn, and relists whenever the
// watched directories change, until ctx is canceled.
//
// Every listed directory is registered with the platform's change
// notification facility (inotify, kqueue, FSEvents, ReadDirectoryChangesW via
// fsnotify). Events arriving within the idle window configured by
// [WithMinIdle] coalesce into a single relist; renames and deletions of
// watched directories are picked up on the relist, which re-registers the
// surviving set.
//
// fn receives the same listings and errors [List] would return. Returning
// false from fn stops watching.
//
// Watch returns nil when ctx is canceled, or the error that prevented the
// watcher from being created.
func Watch(ctx context.Context, roots []string, fn func(listings []*DirListing, errs []error) bool, opts ...Option) error {
	cfg := applyOptions(opts)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	defer func() { _ = fw.Close() }()

	relist := func() ([]string, bool) {
		s := newSession(cfg)
		listings, errs := s.list(ctx, roots)

		dirs := make([]string, 0, len(listings))

		for _, l := range listings {
			if l.Path != "" {
				dirs = append(dirs, l.Path)
			}
		}

		return dirs, fn(listings, errs)
	}

	dirs, keep := relist()
	if !keep {
		return nil
	}

	watched := rewatch(fw, nil, dirs)

	for {
		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-fw.Events:
			if !ok {
				return nil
			}

			// Coalesce: drain further events until the window passes with no
			// new activity.
			if !idleWait(ctx, fw, cfg.MinIdle) {
				return nil
			}

			dirs, keep = relist()
			if !keep {
				return nil
			}

			watched = rewatch(fw, watched, dirs)

		case _, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			// Watcher overflow or backend error: the next relist resyncs, so
			// nothing to do beyond waiting for it.
		}
	}
}

// idleWait blocks until d elapses with no new filesystem events, swallowing
// events as they arrive. Returns false when ctx is canceled or the watcher
// closes.
func idleWait(ctx context.Context, fw *fsnotify.Watcher, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-fw.Events:
			if !ok {
				return false
			}

			if !timer.Stop() {
				<-timer.C
			}

			timer.Reset(d)
		case _, ok := <-fw.Errors:
			if !ok {
				return false
			}
		case <-timer.C:
			return true
		}
	}
}

// rewatch reconciles the watch set with the directories the latest relist
// produced. Add/remove errors are ignored: a directory that vanished between
// listing and registration is caught by the next event-driven relist.
func rewatch(fw *fsnotify.Watcher, old map[string]struct{}, dirs []string) map[string]struct{} {
	next := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		next[d] = struct{}{}
	}

	for d := range old {
		if _, ok := next[d]; !ok {
			_ = fw.Remove(d)
		}
	}

	for d := range next {
		if _, ok := old[d]; !ok {
			_ = fw.Add(d)
		}
	}

	return next
}
