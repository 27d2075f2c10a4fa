package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gamagourmet/internal/adapters/http/middleware"
	"gamagourmet/internal/application/orchestrators"
	accountDomain "gamagourmet/internal/domain/account"
	menuDomain "gamagourmet/internal/domain/menu"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// Templates ship inside the binary so the server runs from any working
// directory.
//
//go:embed templates/*.html
var templateFS embed.FS

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"isGama":       func() bool { return role == accountDomain.RoleGama },
		"csrfToken":    func() string { return csrf.Token(r) },
		"homePath": func() string {
			if p, ok := accountDomain.RoleDefaultPaths[role]; ok {
				return p
			}
			return "/"
		},
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"weekdayName": func(weekday int) string {
			return menuDomain.WeekdayNames[weekday]
		},
		"bucketCapacity": func(bucket string) int {
			return menuDomain.BucketCapacity[bucket]
		},
		"formatPrice": func(cents int) string {
			return fmt.Sprintf("$%d", cents/100)
		},
		"formatDate": func(t time.Time) string {
			return t.Format("02-01-2006")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
		"templates/layout.html", "templates/"+templateName)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// loginErrorMessages maps access gate denial reasons to Spanish messages
// shown on the login page.
var loginErrorMessages = map[string]string{
	middleware.ReasonNoSession:           "Su sesión ha expirado. Inicie sesión nuevamente.",
	middleware.ReasonProfileError:        "No se pudo cargar su perfil. Intente nuevamente.",
	middleware.ReasonProfileNotFound:     "Su cuenta ya no existe. Contacte al administrador.",
	middleware.ReasonUserInactive:        "Su cuenta está desactivada. Contacte al administrador.",
	middleware.ReasonMiddlewareException: "Ocurrió un error inesperado. Intente nuevamente.",
}

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	// Logged-in users land on their section's home page.
	if token, ok := middleware.SessionTokenFromRequest(r); ok {
		if sess, found := sessions.Get(token); found {
			http.Redirect(w, r, accountDomain.RoleDefaultPaths[sess.Role], http.StatusSeeOther)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// Already logged in? Straight to the role's home page.
		if token, ok := middleware.SessionTokenFromRequest(r); ok {
			if sess, found := sessions.Get(token); found {
				http.Redirect(w, r, accountDomain.RoleDefaultPaths[sess.Role], http.StatusSeeOther)
				return
			}
		}
		data := map[string]any{
			"CSRFToken":  csrf.Token(r),
			"RedirectTo": r.URL.Query().Get("redirectTo"),
		}
		if reason := r.URL.Query().Get("error"); reason != "" {
			msg, known := loginErrorMessages[reason]
			if !known {
				msg = loginErrorMessages[middleware.ReasonMiddlewareException]
			}
			data["Error"] = msg
			if detail := r.URL.Query().Get("message"); detail != "" {
				data["ErrorDetail"] = detail
			}
		}
		renderTemplate(w, r, "login.html", data)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		})
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken":  csrf.Token(r),
				"Error":      err.Error(),
				"RedirectTo": r.FormValue("RedirectTo"),
			})
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email, result.Role, result.CompanyID)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}
		middleware.SetSessionCookie(w, token)

		if result.PasswordChangeRequired {
			http.Redirect(w, r, "/change-password", http.StatusSeeOther)
			return
		}
		// Honor the gate's redirectTo only within the user's own section.
		prefix := accountDomain.RolePathPrefixes[result.Role]
		if target := r.FormValue("RedirectTo"); target == prefix ||
			strings.HasPrefix(target, prefix+"/") {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, accountDomain.RoleDefaultPaths[result.Role], http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if token, ok := middleware.SessionTokenFromRequest(r); ok {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleChangePassword handles GET (form) and POST (update) for /change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "change_password.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Form error", http.StatusBadRequest)
			return
		}

		if r.FormValue("NewPassword") != r.FormValue("ConfirmPassword") {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "Las contraseñas nuevas no coinciden",
			})
			return
		}

		input := orchestrators.ChangePasswordInput{
			AccountID:       session.AccountID,
			CurrentPassword: r.FormValue("CurrentPassword"),
			NewPassword:     r.FormValue("NewPassword"),
		}
		if err := orchestrators.ExecuteChangePassword(r.Context(), input, orchestrators.ChangePasswordDeps{
			AccountStore: stores.AccountStore,
		}); err != nil {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		http.Redirect(w, r, accountDomain.RoleDefaultPaths[session.Role], http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
