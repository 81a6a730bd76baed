package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteOpTimeout = 5 * time.Second

// SQLiteKV stores keys in a single-table SQLite database.
type SQLiteKV struct {
	path string
	db   *sql.DB
}

// OpenSQLiteKV opens (creating if needed) the database at path.
func OpenSQLiteKV(path string) (*SQLiteKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, unavailable("mkdir", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open "+path, err)
	}
	// WAL lets the web server read while a CLI invocation writes; busy_timeout
	// avoids "database is locked" when they race.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, unavailable("pragma", err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, unavailable("migrate", err)
	}
	return &SQLiteKV{path: path, db: db}, nil
}

func (s *SQLiteKV) Path() string { return s.path }

func (s *SQLiteKV) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteKV) GetItem(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", err)
	}
	return v, true, nil
}

func (s *SQLiteKV) SetItem(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_unixms = excluded.updated_at_unixms`,
		key, value, time.Now().UnixMilli())
	return unavailable("set", err)
}

func (s *SQLiteKV) RemoveItem(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return unavailable("remove", err)
}
