package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/dbx"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/dmitrijs2005/mindmap/internal/repositories/accounts"
	"github.com/dmitrijs2005/mindmap/internal/repositories/documents"
	"github.com/dmitrijs2005/mindmap/internal/repositories/otprequests"
	"github.com/dmitrijs2005/mindmap/internal/repositories/repomanager"
	"github.com/dmitrijs2005/mindmap/internal/testutil"
)

// --- helpers ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newSQLiteFixture(t *testing.T) (*sql.DB, *repomanager.SQLRepositoryManager) {
	t.Helper()
	return testutil.OpenSQLite(t), repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
}

// failingManager swaps selected repositories for failing fakes.
type failingManager struct {
	*repomanager.SQLRepositoryManager
	accounts  accounts.Repository
	documents documents.Repository
	wrapOtp   func(otprequests.Repository) otprequests.Repository
}

func (m *failingManager) OtpRequests(db dbx.DBTX) otprequests.Repository {
	repo := m.SQLRepositoryManager.OtpRequests(db)
	if m.wrapOtp != nil {
		return m.wrapOtp(repo)
	}
	return repo
}

func (m *failingManager) Accounts(db dbx.DBTX) accounts.Repository {
	if m.accounts != nil {
		return m.accounts
	}
	return m.SQLRepositoryManager.Accounts(db)
}

func (m *failingManager) Documents(db dbx.DBTX) documents.Repository {
	if m.documents != nil {
		return m.documents
	}
	return m.SQLRepositoryManager.Documents(db)
}

type errAccountsRepo struct{ err error }

func (r *errAccountsRepo) Create(context.Context, *models.Account) error { return r.err }
func (r *errAccountsRepo) GetByEmail(context.Context, string) (*models.Account, error) {
	return nil, r.err
}
func (r *errAccountsRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, r.err }
func (r *errAccountsRepo) UpdateLastLogin(context.Context, string, time.Time) error {
	return r.err
}
func (r *errAccountsRepo) UpdatePassword(context.Context, string, string, string) (bool, error) {
	return false, r.err
}

type errDocumentsRepo struct{ err error }

func (r *errDocumentsRepo) GetLatestByOwner(context.Context, string) (*models.DocumentRecord, error) {
	return nil, r.err
}
func (r *errDocumentsRepo) GetByID(context.Context, string, string) (*models.DocumentRecord, error) {
	return nil, r.err
}
func (r *errDocumentsRepo) Upsert(context.Context, *models.DocumentRecord) error { return r.err }
func (r *errDocumentsRepo) ListByOwner(context.Context, string) ([]models.DocumentRecord, error) {
	return nil, r.err
}

// barrierOtpRepo holds every lookup until all expected callers have found
// the row, so their deletes race.
type barrierOtpRepo struct {
	otprequests.Repository
	found *sync.WaitGroup
}

func (r *barrierOtpRepo) FindByEmailAndCode(ctx context.Context, email, code string) (*models.OtpRequest, error) {
	req, err := r.Repository.FindByEmailAndCode(ctx, email, code)
	r.found.Done()
	r.found.Wait()
	return req, err
}

type recordingArchiver struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (a *recordingArchiver) Archive(_ context.Context, ownerID, documentID string, content []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ownerID+"/"+documentID+":"+string(content))
	return a.err
}
