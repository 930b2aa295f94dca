// Package otprequests persists pending password-reset codes.
package otprequests

import (
	"context"

	"github.com/dmitrijs2005/mindmap/internal/models"
)

type Repository interface {
	Create(ctx context.Context, req *models.OtpRequest) error
	DeleteByEmail(ctx context.Context, email string) error
	// FindByEmailAndCode returns common.ErrorNotFound when no row matches exactly.
	FindByEmailAndCode(ctx context.Context, email, code string) (*models.OtpRequest, error)
	// DeleteByID reports false when the row was already gone, so only one
	// caller can consume a code.
	DeleteByID(ctx context.Context, id string) (bool, error)
}
