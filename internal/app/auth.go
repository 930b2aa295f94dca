package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/models"
)

var errBadCredentials = errors.New("invalid email or password")

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "-Enter display name (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getNewPassword(a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()

	ok, err := a.accounts.Register(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if !ok {
		return errors.New("an account with this email already exists")
	}

	a.println("Account created. You can log in now.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("-Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	opCtx, cancel := a.opContext(ctx)
	account, err := a.accounts.Authenticate(opCtx, email, string(password))
	cancel()
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if account == nil {
		return errBadCredentials
	}

	if err := a.startSession(ctx, account.ID, account.Email); err != nil {
		return err
	}

	opCtx, cancel = a.opContext(ctx)
	defer cancel()
	if err := a.sessions.Remember(opCtx, account); err != nil {
		a.logger.Warn(opCtx, "could not remember session", "error", err)
	}

	a.printf("Welcome, %s\n", displayName(account))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	if err := a.autosave.Flush(opCtx); err != nil {
		a.logger.Error(opCtx, "save before logout failed", "error", err)
		return fmt.Errorf("could not save your changes, still logged in: %w", err)
	}
	if err := a.sessions.Forget(opCtx); err != nil {
		a.logger.Warn(opCtx, "could not forget session", "error", err)
	}

	a.ownerID, a.email = "", ""
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(_ context.Context) error {
	a.printf("%s (document %q, %s)\n", a.email, a.editor.Title(), a.editor.DocumentID())
	return nil
}

// Forgot runs the password reset flow: request a code, deliver it, verify
// it and set a new password.
func (a *App) Forgot(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}

	opCtx, cancel := a.opContext(ctx)
	code, err := a.accounts.RequestPasswordReset(opCtx, email, a.config.OtpLifetime)
	if err == nil && code != "" {
		err = a.sender.SendOtp(opCtx, common.NormalizeEmail(email), code)
	}
	cancel()
	if err != nil {
		return fmt.Errorf("could not send reset code: %w", err)
	}
	if code == "" {
		return errors.New("no account with this email")
	}
	a.printf("A reset code was sent to %s. It is valid for %d minutes.\n",
		common.NormalizeEmail(email), int(a.config.OtpLifetime.Minutes()))

	entered, err := GetSimpleText(a.reader, "-Enter code", a.out)
	if err != nil {
		return err
	}

	opCtx, cancel = a.opContext(ctx)
	valid, err := a.accounts.ValidateOtp(opCtx, email, entered)
	cancel()
	if err != nil {
		return fmt.Errorf("code check failed: %w", err)
	}
	if !valid {
		return errors.New("invalid or expired code")
	}

	password, err := getNewPassword(a.out)
	if err != nil {
		return err
	}

	opCtx, cancel = a.opContext(ctx)
	defer cancel()
	ok, err := a.accounts.UpdatePassword(opCtx, email, password)
	if err != nil {
		return fmt.Errorf("password update failed: %w", err)
	}
	if !ok {
		return errors.New("password was not changed")
	}

	a.println("Password updated. You can log in now.")
	return nil
}

// restoreSession logs in from a remembered token when one verifies.
func (a *App) restoreSession(ctx context.Context) {
	opCtx, cancel := a.opContext(ctx)
	sess, err := a.sessions.Restore(opCtx)
	cancel()
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			a.println("Your session has expired, please log in.")
		} else {
			a.logger.Warn(ctx, "could not restore session", "error", err)
		}
		return
	}
	if sess == nil {
		return
	}

	if err := a.startSession(ctx, sess.OwnerID, sess.Email); err != nil {
		printlnFn("Error:", err)
		return
	}
	a.printf("Welcome back, %s\n", sess.Email)
}

// startSession loads the owner's latest document into the editor. An empty
// document is seeded with one node and saved right away. When another user
// is logged in, their edits are saved first and a failed save keeps them
// logged in.
func (a *App) startSession(ctx context.Context, ownerID, email string) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	if a.isLoggedIn() {
		if err := a.autosave.Flush(opCtx); err != nil {
			a.logger.Error(opCtx, "save before switching account failed", "error", err)
			return fmt.Errorf("could not save changes for %s: %w", a.email, err)
		}
	}

	doc, err := a.documents.LoadLatestOrCreate(opCtx, ownerID, common.DefaultDocumentTitle)
	if err != nil {
		return fmt.Errorf("could not load your mind map: %w", err)
	}
	a.load(doc)
	a.ownerID, a.email = ownerID, email

	if len(doc.Nodes) == 0 {
		if _, err := a.editor.AddNode(""); err != nil {
			return err
		}
		if err := a.autosave.Flush(opCtx); err != nil {
			a.logger.Error(opCtx, "initial save failed", "error", err)
		}
	}
	return nil
}

// load replaces the editor content without scheduling a save.
func (a *App) load(doc *models.GraphDocument) {
	resume := a.autosave.Suspend()
	defer resume()
	a.editor.Load(doc)
}

func displayName(acc *models.Account) string {
	if acc.DisplayName != nil && *acc.DisplayName != "" {
		return *acc.DisplayName
	}
	return acc.Email
}
