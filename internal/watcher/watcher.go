// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package watcher reports changes to a fixed set of files. The parent
// directories are watched rather than the files themselves so that editors
// which save by rename are still seen.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tfctl/tfset/internal/log"
)

// DefaultDebounce is how long the watcher waits for more events before it
// reports a batch.
const DefaultDebounce = 100 * time.Millisecond

// ErrNothingToWatch is returned by New when no usable file name is given.
var ErrNothingToWatch = errors.New("nothing to watch")

// Handler receives the sorted, de-duplicated files changed in one batch.
type Handler func(changed []string)

// Watcher watches files for create, write, remove and rename events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
}

// New watches files. Empty names are skipped. A debounce of zero uses
// DefaultDebounce.
func New(files []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{fsw: fsw, files: map[string]struct{}{}, debounce: debounce}
	dirs := map[string]struct{}{}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close() //nolint:errcheck
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	if len(w.files) == 0 {
		fsw.Close() //nolint:errcheck
		return nil, ErrNothingToWatch
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		log.Debugf("watching dir: %s", dir)
	}
	return w, nil
}

// Files returns the watched files.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Run delivers batches to fn until ctx is done or the watcher is closed. fn is
// called from Run's goroutine.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	pending := map[string]struct{}{}
	var timer *time.Timer
	var timerC <-chan time.Time

	fire := func() {
		if len(pending) == 0 {
			return
		}
		changed := make([]string, 0, len(pending))
		for f := range pending {
			changed = append(changed, f)
		}
		sort.Strings(changed)
		clear(pending)
		fn(changed)
	}

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := w.files[name]; !ok || event.Op == fsnotify.Chmod {
				continue
			}
			log.Tracef("watch event: %s %s", event.Op, name)
			pending[name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			fire()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warnf("watch error")
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
