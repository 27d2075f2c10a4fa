package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gamagourmet/internal/domain/account"
)

// AccountStoreForPassword defines the store interface needed by ChangePassword.
type AccountStoreForPassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordInput carries input for the change password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForPassword
}

var ErrWrongCurrentPassword = errors.New("current password is incorrect")

// ExecuteChangePassword verifies the current password and replaces it.
// PRE: Account exists; new password meets length rules
// POST: Password hash replaced, PasswordChangeRequired cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.AccountID == "" {
		return errors.New("account ID is required")
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		return ErrWrongCurrentPassword
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	acct.PasswordChangeRequired = false
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID)
	return nil
}
