package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hpcloud/tail"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"griefingcounter/internal/classifier"
	"griefingcounter/internal/models"
	"griefingcounter/internal/parser"
	"griefingcounter/internal/store"
)

// logExt is the extension backup sweeps look for.
const logExt = ".log"

// Engine incrementally reads game log files from their saved offsets, keeps
// the death events that involve the tracked player and persists them.
//
// Concurrent Ingest calls on the same path are not safe; the Runner keeps the
// live file and the backup sweep on disjoint paths.
type Engine struct {
	store      *store.Store
	classifier *classifier.Classifier
	player     string
	logger     *zap.Logger
}

func NewEngine(st *store.Store, cls *classifier.Classifier, player string, logger *zap.Logger) *Engine {
	return &Engine{
		store:      st,
		classifier: cls,
		player:     strings.ToLower(strings.TrimSpace(player)),
		logger:     logger,
	}
}

// Ingest reads path from its bookmark to end-of-file, stores the new events
// involving the tracked player and advances the bookmark to the file size.
// A missing file is nothing to do. A file that shrank below its bookmark is
// treated as rotated and re-read from the start; the unique event key makes
// the re-read idempotent.
func (e *Engine) Ingest(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		e.logger.Debug("Log file does not exist, skipping", zap.String("file", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()

	offset, err := e.store.Offset(ctx, path)
	if err != nil {
		return err
	}
	if size < offset {
		e.logger.Warn("Log file shrank below bookmark, assuming rotation",
			zap.String("file", path), zap.Int64("offset", offset), zap.Int64("size", size))
		offset = 0
	}
	if size == offset {
		return nil
	}

	e.logger.Info("Reading log", zap.String("file", path), zap.Int64("from", offset), zap.Int64("to", size))
	events, err := e.collect(ctx, path, offset)
	if err != nil {
		return err
	}

	for _, ev := range events {
		for _, actor := range []string{ev.Killer, ev.Victim} {
			if err := e.classifier.Register(ctx, actor); err != nil {
				e.logger.Warn("NPC classification failed, will retry later",
					zap.String("name", actor), zap.Error(err))
			}
		}
	}

	write := func() error {
		added, err := e.store.InsertEvents(ctx, events)
		if err != nil {
			return err
		}
		if added > 0 {
			e.logger.Info("Stored new kill events", zap.String("file", path), zap.Int64("count", added))
		}
		return e.store.SetOffset(ctx, path, size)
	}
	if err := write(); err != nil {
		// One self-healing attempt: re-run the schema, redo the write.
		e.logger.Warn("Store write failed, reinitializing schema and retrying",
			zap.String("file", path), zap.Error(err))
		if rerr := e.store.Reinit(); rerr != nil {
			return multierr.Append(err, rerr)
		}
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}

// collect reads lines from offset to end of file and returns the parsed
// events involving the tracked player.
func (e *Engine) collect(ctx context.Context, path string, offset int64) ([]models.KillEvent, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    false,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer t.Cleanup()

	var events []models.KillEvent
	for line := range t.Lines {
		if line.Err != nil {
			t.Stop()
			return nil, fmt.Errorf("read %s: %w", path, line.Err)
		}
		if err := ctx.Err(); err != nil {
			t.Stop()
			return nil, err
		}
		ev := parser.Parse(strings.ReplaceAll(line.Text, "\x00", ""))
		if ev == nil {
			continue
		}
		killer := strings.ToLower(strings.TrimSpace(ev.Killer))
		victim := strings.ToLower(strings.TrimSpace(ev.Victim))
		if e.player != "" && (killer == e.player || victim == e.player) {
			events = append(events, *ev)
		}
	}
	return events, nil
}

// IngestBackups processes every *.log file in folder in lexicographic order,
// which is chronological for the game's timestamped backup names. One failed
// file does not stop the sweep; failures come back aggregated.
func (e *Engine) IngestBackups(ctx context.Context, folder string) error {
	names, err := listLogs(folder)
	if err != nil || names == nil {
		return err
	}
	var errs error
	for _, name := range names {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		path := filepath.Join(folder, name)
		if err := e.Ingest(ctx, path); err != nil {
			e.logger.Error("Backup log failed", zap.String("file", path), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs
}

// Progress reports how many backup logs in folder have been touched at least
// once (bookmark > 0) against the total. A missing folder is (0, 0).
func (e *Engine) Progress(ctx context.Context, folder string) (imported, total int, err error) {
	names, err := listLogs(folder)
	if err != nil || names == nil {
		return 0, 0, err
	}
	for _, name := range names {
		off, err := e.store.Offset(ctx, filepath.Join(folder, name))
		if err != nil {
			return imported, len(names), err
		}
		if off > 0 {
			imported++
		}
	}
	return imported, len(names), nil
}

// listLogs returns the sorted *.log names in folder, nil if the folder does
// not exist.
func listLogs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", folder, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), logExt) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if names == nil {
		names = []string{}
	}
	return names, nil
}
