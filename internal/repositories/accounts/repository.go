// Package accounts persists registered accounts.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/models"
)

type Repository interface {
	// Create inserts a new account. A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, account *models.Account) error
	// GetByEmail looks up a normalized email; common.ErrorNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// UpdatePassword reports whether a row was changed.
	UpdatePassword(ctx context.Context, email, hash, salt string) (bool, error)
}
