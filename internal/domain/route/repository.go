package route

import (
	"context"

	"github.com/google/uuid"
)

// HistoryRepository defines the persistence contract for route records.
type HistoryRepository interface {
	// Save persists a new route record.
	Save(ctx context.Context, rec *Record) error

	// FindByID retrieves a route record by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ListAll retrieves route records with pagination, newest first.
	ListAll(ctx context.Context, page, limit int) ([]*Record, int64, error)
}
