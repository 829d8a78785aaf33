package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codelive/server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS code_blocks (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL UNIQUE,
	initial_template TEXT NOT NULL,
	solution         TEXT NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function once the
// schema is in place. Useful for tests to seed fixtures.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetCodeBlock retrieves a code block by ID.
func (s *SQLiteStore) GetCodeBlock(ctx context.Context, id string) (*store.CodeBlock, error) {
	query := `
		SELECT id, title, initial_template, solution, created_at
		FROM code_blocks
		WHERE id = ?
	`
	var block store.CodeBlock
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&block.ID,
		&block.Title,
		&block.InitialTemplate,
		&block.Solution,
		&block.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query code block: %w", err)
	}

	return &block, nil
}

// ListCodeBlocks lists all code blocks, oldest first.
func (s *SQLiteStore) ListCodeBlocks(ctx context.Context) ([]*store.CodeBlock, error) {
	query := `
		SELECT id, title, initial_template, solution, created_at
		FROM code_blocks
		ORDER BY created_at ASC, title ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query code blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]*store.CodeBlock, 0)
	for rows.Next() {
		var block store.CodeBlock
		if err := rows.Scan(
			&block.ID,
			&block.Title,
			&block.InitialTemplate,
			&block.Solution,
			&block.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan code block: %w", err)
		}
		blocks = append(blocks, &block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code blocks: %w", err)
	}

	return blocks, nil
}

// CreateCodeBlock creates a new code block with a generated ID.
func (s *SQLiteStore) CreateCodeBlock(ctx context.Context, title, initialTemplate, solution string) (*store.CodeBlock, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO code_blocks (id, title, initial_template, solution)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, title, initialTemplate, solution); err != nil {
		return nil, fmt.Errorf("insert code block: %w", err)
	}

	return s.GetCodeBlock(ctx, id)
}
