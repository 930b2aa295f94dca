package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SQLRepository) Create(ctx context.Context, a *models.Account) error {
	query := r.dialect.Rebind(
		`INSERT INTO accounts (id, email, password_hash, password_salt, display_name, created_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)

	var lastLogin sql.NullString
	if a.LastLoginAt != nil {
		lastLogin = sql.NullString{String: timex.FormatTimestamp(*a.LastLoginAt), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Email, a.PasswordHash, a.PasswordSalt, nullString(a.DisplayName),
		timex.FormatTimestamp(a.CreatedAt), lastLogin)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := r.dialect.Rebind(
		`SELECT id, email, password_hash, password_salt, display_name, created_at, last_login_at
		 FROM accounts WHERE email = ?`)

	var (
		a           models.Account
		displayName sql.NullString
		createdAt   string
		lastLogin   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.PasswordSalt, &displayName, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if displayName.Valid {
		a.DisplayName = &displayName.String
	}
	if a.CreatedAt, err = timex.ParseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for account %s: %w", a.ID, err)
	}
	if lastLogin.Valid {
		t, err := timex.ParseTimestamp(lastLogin.String)
		if err != nil {
			return nil, fmt.Errorf("bad last_login_at for account %s: %w", a.ID, err)
		}
		a.LastLoginAt = &t
	}
	return &a, nil
}

func (r *SQLRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := r.dialect.Rebind(`SELECT COUNT(1) FROM accounts WHERE email = ?`)

	var n int
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := r.dialect.Rebind(`UPDATE accounts SET last_login_at = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, timex.FormatTimestamp(at), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, email, hash, salt string) (bool, error) {
	query := r.dialect.Rebind(`UPDATE accounts SET password_hash = ?, password_salt = ? WHERE email = ?`)

	res, err := r.db.ExecContext(ctx, query, hash, salt, email)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
