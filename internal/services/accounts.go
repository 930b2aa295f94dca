package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/cryptox"
	"github.com/dmitrijs2005/mindmap/internal/dbx"
	"github.com/dmitrijs2005/mindmap/internal/logging"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/dmitrijs2005/mindmap/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// AccountService implements registration, authentication and the OTP
// password-reset flow. Emails are normalized before every lookup.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.PasswordHasher
	logger      logging.Logger

	now     func() time.Time
	otpCode func() (string, error)
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      cryptox.NewPasswordHasher(),
		logger:      logger.With("service", "accounts"),
		now:         func() time.Time { return time.Now().UTC() },
		otpCode:     cryptox.GenerateOtpCode,
	}
}

// Register creates an account. It returns false when the email is taken or
// when email or password is blank.
func (s *AccountService) Register(ctx context.Context, email, password, displayName string) (bool, error) {
	email = common.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	repo := s.repomanager.Accounts(s.db)

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "register: lookup failed", "error", err)
		return false, fmt.Errorf("register %s: %w", email, err)
	}
	if exists {
		return false, nil
	}

	hash, salt := s.hasher.Hash(password)
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    s.now(),
	}
	if name := strings.TrimSpace(displayName); name != "" {
		account.DisplayName = &name
	}

	if err := repo.Create(ctx, account); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		s.logger.Error(ctx, "register: insert failed", "error", err)
		return false, fmt.Errorf("register %s: %w", email, err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return true, nil
}

// Authenticate returns the account when the password verifies, nil otherwise.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	email = common.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		s.logger.Error(ctx, "authenticate: lookup failed", "error", err)
		return nil, fmt.Errorf("authenticate %s: %w", email, err)
	}

	if !s.hasher.Verify(password, account.PasswordHash, account.PasswordSalt) {
		return nil, nil
	}

	now := s.now()
	if err := repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Error(ctx, "authenticate: last login update failed", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("authenticate %s: %w", email, err)
	}
	account.LastLoginAt = &now

	return account, nil
}

// RequestPasswordReset replaces any pending code for the email with a new
// one valid for lifetime and returns it for delivery. It returns "" when no
// account exists.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string, lifetime time.Duration) (string, error) {
	email = common.NormalizeEmail(email)
	if email == "" {
		return "", nil
	}

	exists, err := s.repomanager.Accounts(s.db).ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "password reset: lookup failed", "error", err)
		return "", fmt.Errorf("password reset %s: %w", email, err)
	}
	if !exists {
		return "", nil
	}

	code, err := s.otpCode()
	if err != nil {
		return "", fmt.Errorf("password reset %s: %w", email, err)
	}

	now := s.now()
	req := &models.OtpRequest{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.OtpRequests(tx)
		if err := repo.DeleteByEmail(ctx, email); err != nil {
			return err
		}
		return repo.Create(ctx, req)
	})
	if err != nil {
		s.logger.Error(ctx, "password reset: storing code failed", "error", err)
		return "", fmt.Errorf("password reset %s: %w", email, err)
	}

	s.logger.Info(ctx, "password reset requested", "otp_id", req.ID, "expires_at", req.ExpiresAt)
	return code, nil
}

// ValidateOtp consumes a matching, unexpired code. Expired codes are left in
// place until superseded by a new request.
func (s *AccountService) ValidateOtp(ctx context.Context, email, code string) (bool, error) {
	email = common.NormalizeEmail(email)
	repo := s.repomanager.OtpRequests(s.db)

	req, err := repo.FindByEmailAndCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		s.logger.Error(ctx, "validate otp: lookup failed", "error", err)
		return false, fmt.Errorf("validate otp %s: %w", email, err)
	}

	if req.Expired(s.now()) {
		return false, nil
	}

	consumed, err := repo.DeleteByID(ctx, req.ID)
	if err != nil {
		s.logger.Error(ctx, "validate otp: consume failed", "otp_id", req.ID, "error", err)
		return false, fmt.Errorf("validate otp %s: %w", email, err)
	}
	// a concurrent validation consumed it first
	return consumed, nil
}

// UpdatePassword re-hashes and stores newPassword. It reports whether an
// account row was changed; a blank password is declined.
func (s *AccountService) UpdatePassword(ctx context.Context, email, newPassword string) (bool, error) {
	email = common.NormalizeEmail(email)
	if email == "" || newPassword == "" {
		return false, nil
	}

	hash, salt := s.hasher.Hash(newPassword)
	ok, err := s.repomanager.Accounts(s.db).UpdatePassword(ctx, email, hash, salt)
	if err != nil {
		s.logger.Error(ctx, "update password failed", "error", err)
		return false, fmt.Errorf("update password %s: %w", email, err)
	}
	return ok, nil
}
