package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/dbx"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/dmitrijs2005/mindmap/internal/timex"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) GetLatestByOwner(ctx context.Context, ownerID string) (*models.DocumentRecord, error) {
	query := r.dialect.Rebind(
		`SELECT id, owner_id, title, content, updated_at FROM documents
		 WHERE owner_id = ?
		 ORDER BY updated_at DESC LIMIT 1`)

	return r.getOne(ctx, query, ownerID)
}

func (r *SQLRepository) GetByID(ctx context.Context, ownerID, id string) (*models.DocumentRecord, error) {
	query := r.dialect.Rebind(
		`SELECT id, owner_id, title, content, updated_at FROM documents
		 WHERE owner_id = ? AND id = ?`)

	return r.getOne(ctx, query, ownerID, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, args ...any) (*models.DocumentRecord, error) {
	var (
		rec       models.DocumentRecord
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.Content, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if rec.UpdatedAt, err = timex.ParseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at for document %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func (r *SQLRepository) Upsert(ctx context.Context, rec *models.DocumentRecord) error {
	query := r.dialect.Rebind(
		`INSERT INTO documents (id, owner_id, title, content, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   content = excluded.content,
		   updated_at = excluded.updated_at
		 WHERE documents.owner_id = excluded.owner_id`)

	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Title, rec.Content, timex.FormatTimestamp(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", rec.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("upsert document %s: %w", rec.ID, common.ErrForeignDocument)
	}
	return nil
}

func (r *SQLRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.DocumentRecord, error) {
	query := r.dialect.Rebind(
		`SELECT id, owner_id, title, updated_at FROM documents
		 WHERE owner_id = ?
		 ORDER BY updated_at DESC`)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	result := make([]models.DocumentRecord, 0)
	for rows.Next() {
		var (
			rec       models.DocumentRecord
			updatedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		if rec.UpdatedAt, err = timex.ParseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("bad updated_at for document %s: %w", rec.ID, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return result, nil
}
