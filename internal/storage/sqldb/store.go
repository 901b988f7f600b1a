// Package sqldb reads story segments straight from SQL, for deployments that
// connect to the database directly instead of through its REST layer.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/storage"
	"github.com/tjfontaine/story-gateway/internal/storage/dialect"
)

// Store is a SQL implementation of storage.SegmentStore.
type Store struct {
	db      *sqlx.DB
	dialect *dialect.Dialect
}

var _ storage.SegmentStore = (*Store)(nil)

// Config holds database connection configuration
type Config struct {
	Driver string // Driver name: sqlite, postgres
	DSN    string // Data source name / connection string
	// CreateSchema creates the stories/story_segments tables when missing.
	// Only meant for local SQLite databases; production schemas are owned
	// by the external database.
	CreateSchema bool
}

// New creates a new SQL store with the specified configuration.
func New(cfg Config) (*Store, error) {
	d, err := dialect.ForDriver(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("unsupported database driver: %w", err)
	}

	db, err := sqlx.Open(d.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range d.Setup {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s setup %q: %w", d.Name, stmt, err)
		}
	}

	store := &Store{db: db, dialect: d}

	if cfg.CreateSchema {
		if err := store.initSchema(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return store, nil
}

// NewSQLite creates a new SQLite store with the schema in place.
func NewSQLite(dbPath string) (*Store, error) {
	return New(Config{Driver: "sqlite", DSN: dbPath, CreateSchema: true})
}

// DB returns the underlying sqlx.DB for advanced operations
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stories (
id TEXT PRIMARY KEY,
title TEXT,
genre TEXT NOT NULL
)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS story_segments (
id TEXT PRIMARY KEY,
story_id TEXT NOT NULL,
content TEXT NOT NULL,
is_ai_generated %s NOT NULL DEFAULT FALSE,
sequence_order INTEGER NOT NULL,
FOREIGN KEY (story_id) REFERENCES stories(id) ON DELETE CASCADE
)`, s.dialect.BoolType),
		`CREATE INDEX IF NOT EXISTS idx_story_segments_story ON story_segments(story_id, sequence_order)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const segmentContextQuery = `SELECT s.id, s.story_id, s.content, st.genre
FROM story_segments s
JOIN stories st ON st.id = s.story_id
WHERE s.id = ?`

func (s *Store) GetSegmentContext(ctx context.Context, segmentID string) (*domain.SegmentContext, error) {
	var row domain.SegmentContext
	err := s.db.GetContext(ctx, &row, s.dialect.Rebind(segmentContextQuery), segmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query segment: %w", err)
	}
	return &row, nil
}

// AddStory inserts a story row. Used to seed local databases.
func (s *Store) AddStory(ctx context.Context, id, title string, genre domain.Genre) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO stories (id, title, genre) VALUES (?, ?, ?)`), id, title, string(genre))
	if err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

// AddSegment inserts a segment row. Used to seed local databases.
func (s *Store) AddSegment(ctx context.Context, seg *domain.StorySegment) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO story_segments (id, story_id, content, is_ai_generated, sequence_order)
VALUES (:id, :story_id, :content, :is_ai_generated, :sequence_order)`, seg)
	if err != nil {
		return fmt.Errorf("failed to insert segment: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
