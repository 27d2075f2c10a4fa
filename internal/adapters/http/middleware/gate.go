package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainAccount "gamagourmet/internal/domain/account"
)

// Gate denial reasons, surfaced to the login page as the error query param.
const (
	ReasonNoSession           = "no_session"
	ReasonProfileError        = "profile_error"
	ReasonProfileNotFound     = "profile_not_found"
	ReasonUserInactive        = "user_inactive"
	ReasonMiddlewareException = "middleware_exception"
)

// publicPrefixes are paths that bypass the gate entirely. The root path is
// matched exactly; the rest are prefixes.
var publicPrefixes = []string{"/login", "/logout", "/healthz", "/static/"}

// AccountLookup is the elevated account read the gate performs on every
// protected request. It must resolve any account regardless of company
// scoping; the gate checks the caller's own record, not company data.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (domainAccount.Account, error)
}

// AccessGate returns the middleware that guards every protected route. For
// each request it resolves the session (with exactly one refresh attempt
// for an expired session), loads the account through the elevated lookup,
// verifies the account is active, and confirms the path is under the
// role's section. Any unexpected panic inside the gate denies the request
// rather than letting it through.
//
// Denials redirect to /login with an error reason and the original path in
// redirectTo. A wrong-section request from a valid session redirects
// silently to the role's default page instead.
// INVARIANT: No protected handler runs without an active, role-checked
// account in context
func AccessGate(sessions *SessionStore, accounts AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			session, ok := authorize(w, r, sessions, accounts)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
		})
	}
}

// authorize runs the gate checks for one protected request and writes the
// denial response itself when the request may not proceed. Its recover
// covers only these checks; a panic in a downstream handler propagates.
func authorize(w http.ResponseWriter, r *http.Request, sessions *SessionStore, accounts AccountLookup) (session Session, allowed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("gate_event", "event", "gate_panic", "path", r.URL.Path, "panic", rec)
			denyWithMessage(w, r, ReasonMiddlewareException, "unexpected error during access check")
			allowed = false
		}
	}()

	token, ok := SessionTokenFromRequest(r)
	if !ok {
		deny(w, r, ReasonNoSession)
		return Session{}, false
	}

	session, ok = sessions.Get(token)
	if !ok {
		// One refresh attempt, never more.
		session, ok = sessions.Refresh(token)
		if !ok {
			deny(w, r, ReasonNoSession)
			return Session{}, false
		}
		slog.Info("gate_event", "event", "session_refreshed", "account_id", session.AccountID)
	}

	acct, err := accounts.GetByID(r.Context(), session.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sessions.Delete(token)
			deny(w, r, ReasonProfileNotFound)
			return Session{}, false
		}
		slog.Error("gate_event", "event", "profile_lookup_failed", "account_id", session.AccountID, "error", err)
		denyWithMessage(w, r, ReasonProfileError, "could not load user profile")
		return Session{}, false
	}

	if !acct.Active {
		sessions.Delete(token)
		slog.Info("gate_event", "event", "inactive_denied", "account_id", acct.ID)
		deny(w, r, ReasonUserInactive)
		return Session{}, false
	}

	prefix, ok := domainAccount.RolePathPrefixes[acct.Role]
	if !ok {
		denyWithMessage(w, r, ReasonProfileError, "unrecognized role")
		return Session{}, false
	}
	if inRoleSection(r.URL.Path) && !underSection(r.URL.Path, prefix) {
		// Valid session, wrong section: send the user home without
		// an error message.
		http.Redirect(w, r, domainAccount.RoleDefaultPaths[acct.Role], http.StatusSeeOther)
		return Session{}, false
	}

	// The account row is authoritative; the session may predate
	// role or company changes.
	session.Role = acct.Role
	session.CompanyID = acct.CompanyID
	return session, true
}

// underSection reports whether path is the section prefix itself or a
// subpath of it. A bare prefix match would also claim paths like
// /empresario that merely share leading characters.
func underSection(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// inRoleSection reports whether the path belongs to one of the role
// sections. Authenticated paths outside every section (change-password)
// only require an active account.
func inRoleSection(path string) bool {
	for _, prefix := range domainAccount.RolePathPrefixes {
		if underSection(path, prefix) {
			return true
		}
	}
	return false
}

func isPublicPath(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func deny(w http.ResponseWriter, r *http.Request, reason string) {
	denyWithMessage(w, r, reason, "")
}

func denyWithMessage(w http.ResponseWriter, r *http.Request, reason, message string) {
	q := url.Values{}
	q.Set("error", reason)
	q.Set("redirectTo", r.URL.Path)
	if message != "" {
		q.Set("message", message)
	}
	http.Redirect(w, r, "/login?"+q.Encode(), http.StatusSeeOther)
}
