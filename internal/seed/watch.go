package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// DebounceInterval is how long Watch waits for writes to settle.
const DebounceInterval = 100 * time.Millisecond

// Loader applies one seed file and can re-apply it, replacing the assets it
// created on the previous run.
type Loader struct {
	svc    *catalog.Service
	path   string
	owner  string
	logger *slog.Logger

	mu     sync.Mutex
	seeded []string
}

// NewLoader creates a Loader for the seed file at path.
func NewLoader(svc *catalog.Service, path, owner string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{svc: svc, path: path, owner: owner, logger: logger}
}

// Load removes the assets created by the previous Load, then applies the
// file again. A file that fails to parse leaves existing assets untouched.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	doc, err := ParseFile(l.path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := Remove(ctx, l.svc, l.seeded); err != nil {
		return nil, err
	}
	l.seeded = nil

	res, err := Apply(ctx, l.svc, doc, l.owner)
	if res != nil {
		l.seeded = res.IDs
	}
	if err != nil {
		return res, err
	}

	l.logger.Info("seed applied", slog.String("file", l.path), slog.Int("assets", len(res.IDs)))
	l.svc.Reloaded(ctx)
	return res, nil
}

// Seeded returns the IDs created by the most recent Load.
func (l *Loader) Seeded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.seeded...)
}

// Watch re-loads the seed file whenever it is written, until ctx is done.
// The containing directory is watched so editors that replace the file on
// save are handled.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(l.path)
	if err != nil {
		return fmt.Errorf("failed to resolve seed path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch seed directory: %w", err)
	}

	// Debounce timer; reloads run on this goroutine so none outlive Watch.
	var debounceTimer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != target {
				continue
			}

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(DebounceInterval)
			} else {
				debounceTimer.Reset(DebounceInterval)
			}
			reload = debounceTimer.C

		case <-reload:
			reload = nil
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Debug("seed file changed, reloading", slog.String("file", l.path))
			if _, err := l.Load(ctx); err != nil {
				l.logger.Error("seed reload failed", slog.String("error", err.Error()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
