package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gamagourmet/internal/adapters/email"
	"gamagourmet/internal/domain/account"

	"github.com/google/uuid"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email                  string
	Password               string
	Role                   string
	CompanyID              string
	PasswordChangeRequired bool
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	EmailSender  email.Sender // optional; invite mail is skipped when nil
	FromAddress  string
	BaseURL      string
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation and sends an invite
// email when a sender is configured. Email failures do not fail account
// creation; they are logged and the account stays usable.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account created active with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	if input.Email == "" {
		return "", errors.New("email cannot be empty")
	}
	if input.Password == "" {
		return "", errors.New("password cannot be empty")
	}
	if input.Role == "" {
		return "", errors.New("role cannot be empty")
	}

	// Check if email already exists
	_, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err == nil {
		return "", ErrEmailAlreadyExists
	}

	acct := account.Account{
		ID:                     uuid.New().String(),
		Email:                  input.Email,
		Role:                   input.Role,
		CompanyID:              input.CompanyID,
		Active:                 true,
		CreatedAt:              time.Now(),
		PasswordChangeRequired: input.PasswordChangeRequired,
	}

	// Validate domain rules
	if err := acct.Validate(); err != nil {
		return "", err
	}

	// Set password (handles hashing and length validation)
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	// Save to store
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", input.Email, "role", input.Role, "empresa_id", input.CompanyID)

	if deps.EmailSender != nil {
		sendInvite(ctx, deps, acct, input.Password)
	}

	return acct.ID, nil
}

// sendInvite emails the new user their temporary credentials.
func sendInvite(ctx context.Context, deps CreateAccountDeps, acct account.Account, tempPassword string) {
	loginURL := deps.BaseURL + "/login"
	html := fmt.Sprintf(
		`<p>Se ha creado una cuenta de Gama Gourmet para usted.</p>
		<p>Usuario: %s<br>Contraseña temporal: %s</p>
		<p><a href="%s">Iniciar sesión</a>. Deberá cambiar la contraseña al ingresar.</p>`,
		acct.Email, tempPassword, loginURL)

	_, err := deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{acct.Email},
		From:    deps.FromAddress,
		Subject: "Su cuenta de Gama Gourmet",
		HTML:    html,
	})
	if err != nil {
		slog.Error("auth_event", "event", "invite_email_failed", "email", acct.Email, "error", err)
		return
	}
	slog.Info("auth_event", "event", "invite_email_sent", "email", acct.Email)
}

// --- Deactivate / Reactivate ---

// SetAccountActiveInput carries input for the activation toggle.
type SetAccountActiveInput struct {
	AccountID string
	Active    bool
}

// ExecuteSetAccountActive activates or deactivates an account.
// PRE: AccountID is non-empty; account exists
// POST: Active flag updated; an inactive account is denied on every request
func ExecuteSetAccountActive(ctx context.Context, input SetAccountActiveInput, deps CreateAccountDeps) error {
	if input.AccountID == "" {
		return errors.New("account ID is required")
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if input.Active {
		acct.Reactivate()
	} else {
		acct.Deactivate()
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	event := "account_deactivated"
	if input.Active {
		event = "account_reactivated"
	}
	slog.Info("auth_event", "event", event, "account_id", input.AccountID)
	return nil
}

// ExecuteSeedAdmin creates a default gama account if no accounts exist.
// PRE: Database is initialized
// POST: Gama account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, adminEmail, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:                  adminEmail,
		Password:               password,
		Role:                   account.RoleGama,
		PasswordChangeRequired: true,
	}, CreateAccountDeps{AccountStore: deps.AccountStore})
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", adminEmail)
	return nil
}
