package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quire/internal/checksum"
)

// ChangeCallback is called with the key whose file was modified by someone
// other than this process.
type ChangeCallback func(key string)

const watchDebounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the FS root and reports external
// modifications until ctx is cancelled. Writes made through f itself are
// recognised by checksum and ignored.
//
// Events are debounced: an editor saving a file usually produces several
// events in a row, and the callback fires once per key after they settle.
func Watch(ctx context.Context, f *FS, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(f.root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", f.root))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for key := range pending {
				delete(pending, key)
				if f.externallyChanged(key) {
					logger.Debug("watcher: external change", slog.String("key", key))
					if cb != nil {
						cb(key)
					}
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key := filepath.Base(ev.Name)
			if filepath.Dir(ev.Name) != f.root || !ValidKey(key) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending[key] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// externallyChanged compares the file on disk with what this process last
// wrote for key.
func (f *FS) externallyChanged(key string) bool {
	v, present, err := f.Get(key)
	if err != nil {
		return false
	}
	current := ""
	if present {
		current = checksum.String(v)
	}
	last, known := f.LastWritten(key)
	if !known {
		return true
	}
	return current != last
}
