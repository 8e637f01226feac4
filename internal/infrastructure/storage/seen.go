// Package storage persists run state on disk: the seen-item database
// that powers prior-run deduplication, and the rendered digest files.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ContentRadar/internal/ports"
)

const seenSchema = `
CREATE TABLE IF NOT EXISTS seen_items (
	id         TEXT PRIMARY KEY,
	first_seen TIMESTAMP NOT NULL
);`

// SeenDB remembers item IDs across runs in a local SQLite file.
type SeenDB struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.SeenStore = (*SeenDB)(nil)

// OpenSeenDB opens (and if needed initializes) the database at path.
func OpenSeenDB(path string) (*SeenDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open seen db %s: %w", path, err)
	}
	if _, err := db.Exec(seenSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init seen db schema: %w", err)
	}

	return &SeenDB{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Close releases the underlying database handle.
func (s *SeenDB) Close() error { return s.db.Close() }

// Seen reports which of the given IDs were recorded by earlier runs.
func (s *SeenDB) Seen(ctx context.Context, ids []string) (map[string]bool, error) {
	seen := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return seen, nil
	}

	query, args, err := s.sb.
		Select("id").
		From("seen_items").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen item: %w", err)
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

// MarkSeen records the given IDs. Re-recording an already seen ID is a
// no-op, so retried runs stay idempotent.
func (s *SeenDB) MarkSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	builder := s.sb.
		Insert("seen_items").
		Columns("id", "first_seen").
		Suffix("ON CONFLICT(id) DO NOTHING")

	now := time.Now().UTC()
	for _, id := range ids {
		builder = builder.Values(id, now)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build mark-seen query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark items seen: %w", err)
	}
	return nil
}
