package otprequests

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

func (r *SQLRepository) Create(ctx context.Context, req *models.OtpRequest) error {
	query := r.dialect.Rebind(
		`INSERT INTO otp_requests (id, email, code, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, req.ID, req.Email, req.Code,
		timex.FormatTimestamp(req.ExpiresAt), timex.FormatTimestamp(req.CreatedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := r.dialect.Rebind(`DELETE FROM otp_requests WHERE email = ?`)

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindByEmailAndCode(ctx context.Context, email, code string) (*models.OtpRequest, error) {
	query := r.dialect.Rebind(
		`SELECT id, email, code, expires_at, created_at FROM otp_requests
		 WHERE email = ? AND code = ?
		 ORDER BY created_at DESC LIMIT 1`)

	var (
		req                  models.OtpRequest
		expiresAt, createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, email, code).
		Scan(&req.ID, &req.Email, &req.Code, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if req.ExpiresAt, err = timex.ParseTimestamp(expiresAt); err != nil {
		return nil, fmt.Errorf("bad expires_at for otp %s: %w", req.ID, err)
	}
	if req.CreatedAt, err = timex.ParseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for otp %s: %w", req.ID, err)
	}
	return &req, nil
}

// DeleteByID reports whether this call removed the row.
func (r *SQLRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	query := r.dialect.Rebind(`DELETE FROM otp_requests WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
