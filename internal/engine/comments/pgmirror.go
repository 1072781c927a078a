package comments

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var mirrorColumns = []string{
	"video_id", "position", "comment_id", "parent_id", "author",
	"author_channel_id", "published_at", "like_count", "text", "exported_at",
}

// PGMirror copies exported rows into Postgres. Each export replaces the
// previous snapshot of the same video.
type PGMirror struct {
	pool *pgxpool.Pool
}

// ConnectPGMirror creates a pgx pool and runs schema migrations.
func ConnectPGMirror(ctx context.Context, databaseURL string) (*PGMirror, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 2
	config.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	m := &PGMirror{pool: pool}
	if err := m.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Debug("comment mirror connected", slog.String("addr", config.ConnConfig.Host))
	return m, nil
}

func (m *PGMirror) Close() {
	m.pool.Close()
}

func (m *PGMirror) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := m.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// MirrorComments replaces the stored rows of videoID with rows, in file order.
func (m *PGMirror) MirrorComments(ctx context.Context, videoID string, rows []engine.CommentRecord) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM youtube_comments WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("delete previous rows: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"youtube_comments"}, mirrorColumns, mirrorSource(videoID, rows, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.Debug("comments mirrored", slog.String("video_id", videoID), slog.Int64("rows", n))
	return nil
}

// mirrorSource feeds rows to CopyFrom in mirrorColumns order.
func mirrorSource(videoID string, rows []engine.CommentRecord, at time.Time) pgx.CopyFromSource {
	return pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{
			videoID, int32(i), r.CommentID, r.ParentID, r.Author,
			r.AuthorChannelID, r.PublishedAt, r.LikeCount, r.Text, at,
		}, nil
	})
}
