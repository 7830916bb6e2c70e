// Package watch notifies listeners when the folder under review changes on
// disk, so a reviewed plan can be recognised as stale.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires.
const DefaultDebounce = 200 * time.Millisecond

// ChangeCallback is called once per burst of events in the followed folder.
// changes is the number of raw events folded into the burst.
type ChangeCallback func(folder string, changes int)

// Tracker watches at most one folder at a time. Follow switches the folder;
// Run owns the fsnotify watcher until ctx is cancelled.
type Tracker struct {
	logger   *slog.Logger
	debounce time.Duration
	cb       ChangeCallback
	follow   chan string
}

// NewTracker creates a tracker. A debounce <= 0 selects DefaultDebounce.
func NewTracker(logger *slog.Logger, debounce time.Duration, cb ChangeCallback) *Tracker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Tracker{
		logger:   logger,
		debounce: debounce,
		cb:       cb,
		follow:   make(chan string, 1),
	}
}

// Follow asks the tracker to watch folder instead of the current one. It
// never blocks; only the latest request is kept.
func (t *Tracker) Follow(folder string) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return
	}
	for {
		select {
		case t.follow <- abs:
			return
		default:
			select {
			case <-t.follow:
			default:
			}
		}
	}
}

// Run processes follow requests and file events until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	t.logger.Info("watch: started")

	var (
		current string
		pending int
		timer   *time.Timer
		fire    <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(t.debounce)
			fire = timer.C
		} else {
			timer.Reset(t.debounce)
		}
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("watch: stopped")
			return nil

		case folder := <-t.follow:
			if folder == current {
				continue
			}
			if current != "" {
				_ = w.Remove(current)
			}
			pending = 0
			if err := w.Add(folder); err != nil {
				t.logger.Warn("watch: add failed", slog.String("folder", folder), slog.String("error", err.Error()))
				current = ""
				continue
			}
			current = folder
			t.logger.Debug("watch: following", slog.String("folder", folder))

		case <-fire:
			if pending > 0 && current != "" {
				t.logger.Debug("watch: folder changed", slog.String("folder", current), slog.Int("changes", pending))
				if t.cb != nil {
					t.cb(current, pending)
				}
			}
			pending = 0

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if current == "" || filepath.Dir(ev.Name) != current {
				continue
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			pending++
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			t.logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}
