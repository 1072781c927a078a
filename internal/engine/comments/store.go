package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the per-user SQLite file holding the saved API key and the
// export history.
type Store struct {
	db *sql.DB
}

// ExportEntry is one row of the export history.
type ExportEntry struct {
	ID        int64  `json:"id"`
	VideoID   string `json:"video_id"`
	Path      string `json:"path"`
	Rows      int    `json:"rows"`
	TopLevel  int    `json:"top_level"`
	Replies   int    `json:"replies"`
	CreatedAt string `json:"created_at"`
}

const settingAPIKey = "api_key"

// DefaultStateDir is ~/.go_ytcomments.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".go_ytcomments")
}

// OpenStore opens (or creates) dir/settings.db.
func OpenStore(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultStateDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "settings.db"))
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initStoreSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func initStoreSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS exports (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id   TEXT NOT NULL,
		path       TEXT NOT NULL,
		rows       INTEGER NOT NULL,
		top_level  INTEGER NOT NULL,
		replies    INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS exports_video_idx ON exports (video_id)`)
	return err
}

// GetAPIKey returns the stored key; ok is false when none was saved.
func (s *Store) GetAPIKey(ctx context.Context) (key string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingAPIKey).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get api key: %w", err)
	}
	return key, key != "", nil
}

// SetAPIKey saves key, replacing any previous one.
func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("store: api key is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		settingAPIKey, key, now)
	if err != nil {
		return fmt.Errorf("store: set api key: %w", err)
	}
	return nil
}

// RecordExport appends a finished export to the history.
func (s *Store) RecordExport(ctx context.Context, res *ExportResult) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (video_id, path, rows, top_level, replies, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.VideoID, res.AbsPath, res.Rows, res.TopLevel, res.Replies, now)
	if err != nil {
		return fmt.Errorf("store: record export: %w", err)
	}
	return nil
}

// ListExports returns the most recent exports first, optionally for one video.
func (s *Store) ListExports(ctx context.Context, videoID string, limit int) ([]ExportEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if videoID != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, video_id, path, rows, top_level, replies, created_at
			 FROM exports WHERE video_id = ? ORDER BY id DESC LIMIT ?`,
			videoID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, video_id, path, rows, top_level, replies, created_at
			 FROM exports ORDER BY id DESC LIMIT ?`,
			limit)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list exports: %w", err)
	}
	defer rows.Close()

	var out []ExportEntry
	for rows.Next() {
		var e ExportEntry
		if err := rows.Scan(&e.ID, &e.VideoID, &e.Path, &e.Rows, &e.TopLevel, &e.Replies, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan export: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
