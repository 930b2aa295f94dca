// Package repomanager vends repository implementations for the configured
// SQL dialect and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mindmap/internal/dbx"
	"github.com/dmitrijs2005/mindmap/internal/migrations"
	"github.com/dmitrijs2005/mindmap/internal/repositories/accounts"
	"github.com/dmitrijs2005/mindmap/internal/repositories/documents"
	"github.com/dmitrijs2005/mindmap/internal/repositories/metadata"
	"github.com/dmitrijs2005/mindmap/internal/repositories/otprequests"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	OtpRequests(db dbx.DBTX) otprequests.Repository
	Documents(db dbx.DBTX) documents.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

// SQLRepositoryManager builds SQL repositories bound to one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) OtpRequests(db dbx.DBTX) otprequests.Repository {
	return otprequests.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations using the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}
