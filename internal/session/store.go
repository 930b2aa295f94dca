package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/dmitrijs2005/mindmap/internal/repositories/repomanager"
)

// Store keeps at most one remembered session. Without a secret it stores
// nothing and restores nothing.
type Store struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
	ttl         time.Duration

	now func() time.Time
}

func NewStore(db *sql.DB, m repomanager.RepositoryManager, secret string, ttl time.Duration) *Store {
	return &Store{
		db:          db,
		repomanager: m,
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *Store) Enabled() bool {
	return len(s.secret) > 0
}

// Remember signs a token for the account and stores it.
func (s *Store) Remember(ctx context.Context, account *models.Account) error {
	if !s.Enabled() {
		return nil
	}
	token, err := Issue(account.ID, account.Email, s.secret, s.now(), s.ttl)
	if err != nil {
		return fmt.Errorf("issue session: %w", err)
	}
	if err := s.repomanager.Metadata(s.db).Set(ctx, common.SessionMetadataKey, token); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Restore returns the remembered session, or nil when there is none. A
// stored token that no longer verifies is removed and its error returned.
func (s *Store) Restore(ctx context.Context) (*Session, error) {
	if !s.Enabled() {
		return nil, nil
	}
	repo := s.repomanager.Metadata(s.db)

	token, ok, err := repo.Get(ctx, common.SessionMetadataKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	sess, err := Parse(token, s.secret, s.now())
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrInvalidToken) {
			if derr := repo.Delete(ctx, common.SessionMetadataKey); derr != nil {
				return nil, fmt.Errorf("drop session: %w", derr)
			}
		}
		return nil, err
	}
	return sess, nil
}

// Forget removes the remembered session.
func (s *Store) Forget(ctx context.Context) error {
	if err := s.repomanager.Metadata(s.db).Delete(ctx, common.SessionMetadataKey); err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	return nil
}
