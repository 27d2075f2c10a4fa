package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
)

// Role constants
const (
	RoleGama     = "gama"     // super-admin: manages the whole catalog
	RoleEmpresa  = "empresa"  // company admin
	RoleEmpleado = "empleado" // employee of a company
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleGama, RoleEmpresa, RoleEmpleado}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: gama, empresa, empleado")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrCompanyRequired  = errors.New("empresa and empleado accounts must belong to a company")
)

// Account holds state for a user account.
// Gama accounts have no company; empresa and empleado accounts always do.
type Account struct {
	ID                     string
	Email                  string
	PasswordHash           string
	Role                   string
	CompanyID              string // empty for gama accounts
	Active                 bool
	CreatedAt              time.Time
	FailedLogins           int
	LockedUntil            time.Time
	PasswordChangeRequired bool
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	if a.Role != RoleGama && a.CompanyID == "" {
		return ErrCompanyRequired
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext))
	if err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is locked out from failed logins.
// POST: Returns true if LockedUntil is in the future
func (a *Account) IsLocked() bool {
	return !a.LockedUntil.IsZero() && time.Now().Before(a.LockedUntil)
}

// RecordFailedLogin increments the failure counter and locks the account
// for 15 minutes after 5 consecutive failures.
// POST: FailedLogins incremented; LockedUntil set when threshold reached
func (a *Account) RecordFailedLogin() {
	a.FailedLogins++
	if a.FailedLogins >= 5 {
		a.LockedUntil = time.Now().Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failure counter and any lockout.
// POST: FailedLogins is 0, LockedUntil is zeroed
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// Deactivate marks the account inactive. An inactive account is denied
// on every request regardless of role.
// POST: Active is false
func (a *Account) Deactivate() {
	a.Active = false
}

// Reactivate marks the account active again.
// POST: Active is true
func (a *Account) Reactivate() {
	a.Active = true
}

// RolePathPrefixes maps each role to the path prefix it may browse.
var RolePathPrefixes = map[string]string{
	RoleGama:     "/gama",
	RoleEmpresa:  "/empresa",
	RoleEmpleado: "/empleado",
}

// RoleDefaultPaths maps each role to its default landing page.
var RoleDefaultPaths = map[string]string{
	RoleGama:     "/gama/dashboard",
	RoleEmpresa:  "/empresa/dashboard",
	RoleEmpleado: "/empleado/menu",
}

func isValidRole(r string) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}
