package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"griefingcounter/internal/models"
)

// ErrNoPlayer is returned when no tracked player name is configured. Callers
// should prompt for setup instead of treating it as a storage failure.
var ErrNoPlayer = errors.New("store: no player name set")

// StorageError wraps an underlying engine failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

const schema = `
CREATE TABLE IF NOT EXISTS kills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT,
	killed_player TEXT,
	killer TEXT,
	zone TEXT,
	weapon TEXT,
	damage_class TEXT,
	damage_type TEXT,
	UNIQUE(timestamp, killed_player, killer, zone, weapon, damage_class, damage_type)
);
CREATE TABLE IF NOT EXISTS file_positions (
	file_path TEXT PRIMARY KEY,
	last_offset INTEGER
);
CREATE TABLE IF NOT EXISTS npc_categories (
	npc_name TEXT PRIMARY KEY,
	category TEXT
);`

// Store is the per-player event database: kill events with a natural unique
// key, per-file read offsets and the NPC category cache. One Store exists per
// tracked player; switching players means opening a different database file.
//
// Writes are serialized through a single connection plus a mutex; SQLite's
// busy_timeout bounds waiting on an externally held lock instead of hanging.
type Store struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// Open opens (creating if needed) the database for player inside dbFolder and
// runs the schema. Returns ErrNoPlayer when player is empty.
func Open(dbFolder, player string, logger *zap.Logger) (*Store, error) {
	if player == "" {
		return nil, ErrNoPlayer
	}
	if err := os.MkdirAll(dbFolder, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir " + dbFolder, Err: err}
	}
	path := filepath.Join(dbFolder, fmt.Sprintf("star_citizen_kills_%s.db", player))

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, &StorageError{Op: "open " + path, Err: err}
	}
	// Single writer; readers share the same connection and serialize behind it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: path, logger: logger}
	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the schema. Safe to call on an already initialized database.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(schema); err != nil {
		return &StorageError{Op: "init schema", Err: err}
	}
	return nil
}

// Reinit re-runs the schema DDL. Used as the one self-healing step before an
// ingestion write is retried.
func (s *Store) Reinit() error {
	s.logger.Warn("Reinitializing store schema", zap.String("db", s.path))
	return s.Init()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// SizeKB returns the database file size in kilobytes, 0 if it cannot be read.
func (s *Store) SizeKB() float64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / 1024
}

// InsertEvents inserts a batch of kill events in one transaction with
// INSERT OR IGNORE semantics: lines already seen through another file leave no
// duplicate row. Returns the number of rows actually added.
func (s *Store) InsertEvents(ctx context.Context, events []models.KillEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.fail("begin insert events", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO kills
			(timestamp, killed_player, killer, zone, weapon, damage_class, damage_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, s.fail("prepare insert events", err)
	}
	defer stmt.Close()

	var added int64
	for _, ev := range events {
		res, err := stmt.ExecContext(ctx,
			ev.Timestamp, ev.Victim, ev.Killer, ev.Zone, ev.Weapon, ev.DamageClass, ev.DamageType)
		if err != nil {
			tx.Rollback()
			return 0, s.fail(fmt.Sprintf("insert event %s/%s", truncate(ev.Killer), truncate(ev.Victim)), err)
		}
		n, _ := res.RowsAffected()
		added += n
	}
	if err := tx.Commit(); err != nil {
		return 0, s.fail("commit insert events", err)
	}
	return added, nil
}

// Offset returns the saved read offset for path, 0 if none was recorded.
func (s *Store) Offset(ctx context.Context, path string) (int64, error) {
	var off int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_offset FROM file_positions WHERE file_path = ?`, path).Scan(&off)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, s.fail("offset "+truncate(path), err)
	}
	return off, nil
}

// SetOffset records the read offset for path.
func (s *Store) SetOffset(ctx context.Context, path string, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO file_positions (file_path, last_offset) VALUES (?, ?)`,
		path, offset)
	if err != nil {
		return s.fail("set offset "+truncate(path), err)
	}
	return nil
}

// EnsureCategory inserts a category cache entry unless the name is already known.
func (s *Store) EnsureCategory(ctx context.Context, name, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO npc_categories (npc_name, category) VALUES (?, ?)`,
		name, category)
	if err != nil {
		return s.fail("ensure category "+truncate(name), err)
	}
	return nil
}

// UpdateCategory overwrites the category of an existing cache entry.
func (s *Store) UpdateCategory(ctx context.Context, name, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`UPDATE npc_categories SET category = ? WHERE npc_name = ?`, category, name)
	if err != nil {
		return s.fail("update category "+truncate(name), err)
	}
	return nil
}

// Category returns the cached category for a normalized name; ok is false when
// the name has never been cached.
func (s *Store) Category(ctx context.Context, name string) (string, bool, error) {
	var cat string
	err := s.db.QueryRowContext(ctx,
		`SELECT category FROM npc_categories WHERE npc_name = ?`, name).Scan(&cat)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail("category "+truncate(name), err)
	}
	return cat, true, nil
}

// Categories loads the whole name→category cache.
func (s *Store) Categories(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT npc_name, category FROM npc_categories`)
	if err != nil {
		return nil, s.fail("load categories", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, cat string
		if err := rows.Scan(&name, &cat); err != nil {
			return nil, s.fail("scan categories", err)
		}
		out[name] = cat
	}
	return out, rows.Err()
}

// Uncategorized returns the names still waiting for a concrete category.
func (s *Store) Uncategorized(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT npc_name FROM npc_categories WHERE category = ?`, models.CategoryUncategorized)
	if err != nil {
		return nil, s.fail("load uncategorized", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, s.fail("scan uncategorized", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Events runs a built query against the kills table.
func (s *Store) Events(ctx context.Context, q *Query) ([]models.KillEvent, error) {
	sqlText, args := q.Select("timestamp, killed_player, killer, zone, weapon, damage_class, damage_type")
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, s.fail("query events", err)
	}
	defer rows.Close()

	var out []models.KillEvent
	for rows.Next() {
		var ev models.KillEvent
		if err := rows.Scan(&ev.Timestamp, &ev.Victim, &ev.Killer, &ev.Zone,
			&ev.Weapon, &ev.DamageClass, &ev.DamageType); err != nil {
			return nil, s.fail("scan event", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountEvents counts kills rows matching a built query.
func (s *Store) CountEvents(ctx context.Context, q *Query) (int, error) {
	sqlText, args := q.Select("COUNT(*)")
	var n int
	if err := s.db.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		return 0, s.fail("count events", err)
	}
	return n, nil
}

// fail logs the failed operation with truncated parameters and wraps it.
func (s *Store) fail(op string, err error) error {
	s.logger.Error("Store operation failed", zap.String("op", op), zap.Error(err))
	return &StorageError{Op: op, Err: err}
}

func truncate(s string) string {
	if len(s) > 64 {
		return s[:64] + "…"
	}
	return s
}
