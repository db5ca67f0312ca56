package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/folioapp/folio/internal/server/middleware"
	"github.com/folioapp/folio/internal/service"
)

// SessionCookieName is the name of the admin session cookie.
const SessionCookieName = "folio_session"

// CookieConfig controls how the session cookie is issued. In production the
// cookie is Secure with SameSite=None so it survives cross-origin frontend
// deployments; everywhere else it is SameSite=Lax over plain HTTP.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

// AdminHandler serves the admin bootstrap and session lifecycle endpoints.
type AdminHandler struct {
	auth         *service.AuthService
	sessions     *service.SessionService
	cookies      CookieConfig
	exposeErrors bool
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. exposeErrors attaches internal
// error detail to 500 responses; keep it off in production.
func NewAdminHandler(auth *service.AuthService, sessions *service.SessionService, cookies CookieConfig, exposeErrors bool, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		auth:         auth,
		sessions:     sessions,
		cookies:      cookies,
		exposeErrors: exposeErrors,
		logger:       logger,
	}
}

// Exists reports whether the admin account has been created yet, and whether
// the caller currently holds a valid admin session. Frontends use it to
// decide between the setup wizard and the login form.
// GET /api/admin/exists
func (h *AdminHandler) Exists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.auth.CheckAdminExists(r.Context())
	if err != nil {
		writeInternalError(w, h.logger, h.exposeErrors, "Failed to check admin account", err)
		return
	}

	loggedIn := middleware.GetPrincipal(r.Context()) != nil

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exists":   exists,
		"loggedIn": loggedIn,
	})
}

// setupRequest is the expected payload for the Setup endpoint.
type setupRequest struct {
	SetupToken string `json:"setupToken"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// Setup creates the sole admin account. It requires the out-of-band setup
// token, succeeds at most once for the lifetime of the deployment, and logs
// the new admin in immediately with a fresh session.
// POST /api/admin/setup
func (h *AdminHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	admin, err := h.auth.SetupAdmin(r.Context(), req.SetupToken, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSetupToken):
			writeError(w, http.StatusForbidden, "Invalid setup token")
		case errors.Is(err, service.ErrAdminExists):
			writeError(w, http.StatusConflict, "Admin account already exists")
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeInternalError(w, h.logger, h.exposeErrors, "Setup failed", err)
		}
		return
	}

	token, err := h.sessions.Create(r.Context(), admin, priorToken(r))
	if err != nil {
		writeInternalError(w, h.logger, h.exposeErrors, "Failed to create session", err)
		return
	}
	h.setSessionCookie(w, token)

	h.logger.Info("admin account created", "username", admin.Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// loginRequest is the expected payload for the Login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies the admin's credentials and issues a fresh session. Any
// session the caller previously held is destroyed, so a login always
// regenerates the session identifier.
// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	admin, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeInternalError(w, h.logger, h.exposeErrors, "Authentication error", err)
		return
	}

	token, err := h.sessions.Create(r.Context(), admin, priorToken(r))
	if err != nil {
		writeInternalError(w, h.logger, h.exposeErrors, "Failed to create session", err)
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"username": admin.Username,
	})
}

// Logout destroys the caller's session and clears the cookie. It succeeds
// even when no session exists, so repeated logouts are harmless. A failed
// destroy is logged but still reported as success: the cookie is cleared
// either way and the session row expires on its own.
// POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := priorToken(r); token != "" {
		if err := h.sessions.Destroy(r.Context(), token); err != nil {
			h.logger.Error("logout session destroy failed", "error", err)
		}
	}
	h.clearSessionCookie(w)

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// priorToken extracts the session token from the request cookie, if any.
func priorToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *AdminHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})
}

func (h *AdminHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})
}
