package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a code block does not exist.
var ErrNotFound = errors.New("code block not found")

// CodeBlock is a stored coding exercise: a starting template shown to
// students and the solution the mentor expects.
type CodeBlock struct {
	ID              string
	Title           string
	InitialTemplate string
	Solution        string
	CreatedAt       time.Time
}

// CodeBlockStore handles code block persistence.
type CodeBlockStore interface {
	// GetCodeBlock retrieves a code block by ID. Returns ErrNotFound if absent.
	GetCodeBlock(ctx context.Context, id string) (*CodeBlock, error)

	// ListCodeBlocks lists all code blocks, oldest first.
	ListCodeBlocks(ctx context.Context) ([]*CodeBlock, error)

	// CreateCodeBlock creates a new code block and returns it with its
	// generated ID.
	CreateCodeBlock(ctx context.Context, title, initialTemplate, solution string) (*CodeBlock, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	CodeBlockStore

	// Close closes the underlying database connection.
	Close() error
}
