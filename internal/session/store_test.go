package session

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/dbx"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/dmitrijs2005/mindmap/internal/repositories/repomanager"
	"github.com/dmitrijs2005/mindmap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, secret string) (*Store, *time.Time) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	s := NewStore(db, repomanager.NewSQLRepositoryManager(dbx.DialectSQLite), secret, time.Hour)
	now := t0
	s.now = func() time.Time { return now }
	return s, &now
}

func storedToken(t *testing.T, s *Store) (string, bool) {
	t.Helper()
	v, ok, err := s.repomanager.Metadata(s.db).Get(context.Background(), common.SessionMetadataKey)
	require.NoError(t, err)
	return v, ok
}

func TestStore_RememberRestoreForget(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "secret")

	sess, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, s.Remember(ctx, &models.Account{ID: "owner-1", Email: "a@x.com"}))

	sess, err = s.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "owner-1", sess.OwnerID)
	assert.Equal(t, "a@x.com", sess.Email)

	require.NoError(t, s.Forget(ctx))
	sess, err = s.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_ExpiredTokenIsDropped(t *testing.T) {
	ctx := context.Background()
	s, now := newStore(t, "secret")

	require.NoError(t, s.Remember(ctx, &models.Account{ID: "owner-1", Email: "a@x.com"}))
	*now = now.Add(2 * time.Hour)

	sess, err := s.Restore(ctx)
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Nil(t, sess)

	_, ok := storedToken(t, s)
	assert.False(t, ok)
}

func TestStore_TamperedTokenIsDropped(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "secret")

	require.NoError(t, s.repomanager.Metadata(s.db).Set(ctx, common.SessionMetadataKey, "garbage"))

	_, err := s.Restore(ctx)
	require.ErrorIs(t, err, common.ErrInvalidToken)
	_, ok := storedToken(t, s)
	assert.False(t, ok)
}

func TestStore_DisabledWithoutSecret(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "")

	assert.False(t, s.Enabled())
	require.NoError(t, s.Remember(ctx, &models.Account{ID: "owner-1"}))
	_, ok := storedToken(t, s)
	assert.False(t, ok)

	sess, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
