package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"griefingcounter/internal/classifier"
)

// RunnerConfig carries the paths and intervals for the background loops.
type RunnerConfig struct {
	LivePath           string
	BackupFolder       string
	RefreshInterval    time.Duration
	SweepInterval      time.Duration
	ReclassifyInterval time.Duration
}

// Runner drives the engine in the background: the live log on its own loop so
// new events surface promptly, the backup history sweep behind it, and a
// periodic reclassification pass. Every loop is supervised: a panic or an
// unexpected return is logged, counted and the loop relaunched, so one dead
// loop degrades the runner instead of killing the process.
type Runner struct {
	engine     *Engine
	classifier *classifier.Classifier
	cfg        RunnerConfig
	logger     *zap.Logger

	mu       sync.Mutex
	restarts map[string]int

	errs chan error
}

func NewRunner(engine *Engine, cls *classifier.Classifier, cfg RunnerConfig, logger *zap.Logger) *Runner {
	return &Runner{
		engine:     engine,
		classifier: cls,
		cfg:        cfg,
		logger:     logger,
		restarts:   make(map[string]int),
		errs:       make(chan error, 16),
	}
}

// Start launches the loops and blocks until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	var wg sync.WaitGroup
	loops := map[string]func(context.Context) error{
		"live":       r.liveLoop,
		"backups":    r.backupLoop,
		"reclassify": r.reclassifyLoop,
	}
	for name, fn := range loops {
		wg.Add(1)
		go func(name string, fn func(context.Context) error) {
			defer wg.Done()
			r.supervise(ctx, name, fn)
		}(name, fn)
	}
	wg.Wait()
	r.logger.Info("Runner stopped")
}

// Status returns how often each loop had to be restarted. A non-zero count
// means the runner has been degraded at some point.
func (r *Runner) Status() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.restarts))
	for k, v := range r.restarts {
		out[k] = v
	}
	return out
}

// Errors exposes non-fatal failures (failed files, failed queries) to the
// caller. The channel is buffered; when nobody listens, errors are dropped
// after being logged.
func (r *Runner) Errors() <-chan error { return r.errs }

func (r *Runner) report(err error) {
	if err == nil {
		return
	}
	select {
	case r.errs <- err:
	default:
	}
}

// supervise runs fn until ctx ends, relaunching it after a crash.
func (r *Runner) supervise(ctx context.Context, name string, fn func(context.Context) error) {
	for {
		err := r.runProtected(ctx, fn)
		if ctx.Err() != nil {
			return
		}
		r.mu.Lock()
		r.restarts[name]++
		count := r.restarts[name]
		r.mu.Unlock()
		r.logger.Error("Background loop died, restarting",
			zap.String("loop", name), zap.Int("restarts", count), zap.Error(err))
		r.report(fmt.Errorf("loop %s restarted: %w", name, err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (r *Runner) runProtected(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx)
}

// liveLoop ingests the live log immediately, then again on every file-change
// notification and on a refresh tick as a fallback for missed notifications.
func (r *Runner) liveLoop(ctx context.Context) error {
	r.report(r.engine.Ingest(ctx, r.cfg.LivePath))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(r.cfg.LivePath)); err != nil {
		r.logger.Warn("Cannot watch live folder, falling back to polling",
			zap.String("dir", filepath.Dir(r.cfg.LivePath)), zap.Error(err))
	}

	ticker := time.NewTicker(r.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-watcher.Events:
			if ev.Name != r.cfg.LivePath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				r.report(r.engine.Ingest(ctx, r.cfg.LivePath))
			}
		case err := <-watcher.Errors:
			r.logger.Error("Live watcher error", zap.Error(err))
		case <-ticker.C:
			r.report(r.engine.Ingest(ctx, r.cfg.LivePath))
		}
	}
}

// backupLoop sweeps the backup folder once at start, then periodically. The
// offsets make repeat sweeps cheap: untouched files are skipped entirely.
func (r *Runner) backupLoop(ctx context.Context) error {
	r.report(r.engine.IngestBackups(ctx, r.cfg.BackupFolder))

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.report(r.engine.IngestBackups(ctx, r.cfg.BackupFolder))
		}
	}
}

// reclassifyLoop periodically retries the uncategorized NPC names.
func (r *Runner) reclassifyLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.ReclassifyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			updated, err := r.classifier.ReclassifyPending(ctx)
			if err != nil {
				r.report(err)
				continue
			}
			if updated > 0 {
				r.logger.Info("Reclassification pass resolved entries", zap.Int("updated", updated))
			}
		}
	}
}
