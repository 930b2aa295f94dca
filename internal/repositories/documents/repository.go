// Package documents persists encoded document snapshots, one row per document.
package documents

import (
	"context"

	"github.com/dmitrijs2005/mindmap/internal/models"
)

type Repository interface {
	// GetLatestByOwner returns the owner's most recently updated document,
	// or common.ErrorNotFound.
	GetLatestByOwner(ctx context.Context, ownerID string) (*models.DocumentRecord, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.DocumentRecord, error)
	// Upsert inserts the row or overwrites title, content and updated_at.
	// A row with the same id but another owner is left untouched and
	// common.ErrForeignDocument is returned.
	Upsert(ctx context.Context, rec *models.DocumentRecord) error
	// ListByOwner returns rows newest first, without content.
	ListByOwner(ctx context.Context, ownerID string) ([]models.DocumentRecord, error)
}
