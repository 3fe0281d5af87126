package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"unipathway-admin-auth/internal/audit"
	"unipathway-admin-auth/internal/authority"
	"unipathway-admin-auth/internal/config"
	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/permission"
	"unipathway-admin-auth/internal/util"
)

// AuthHandler handles HTTP requests for admin authentication and the
// permission-gated admin views.
type AuthHandler struct {
	authority *authority.Authority
	recorder  *audit.Recorder
	session   config.SessionConfig
	secure    bool
	logger    *zap.Logger
}

// NewAuthHandler creates the admin auth handler. recorder may be nil when
// no audit sinks are configured; the audit search endpoint then reports
// itself unavailable.
func NewAuthHandler(auth *authority.Authority, recorder *audit.Recorder, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authority: auth,
		recorder:  recorder,
		session:   cfg.Session,
		secure:    cfg.Server.EnableTLS,
		logger:    logger,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// SessionPayload is the session view returned to the admin frontend.
// PasswordHash never appears here; the token travels in the cookie and in
// the login response only.
type SessionPayload struct {
	AdminID      int        `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Name         string     `json:"name"`
	LoginTime    time.Time  `json:"loginTime"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
}

func sessionPayload(s *models.AdminSession) SessionPayload {
	p := SessionPayload{
		AdminID:   s.AdminID,
		Email:     s.Email,
		Role:      s.Role,
		Name:      s.Name,
		LoginTime: s.LoginTime,
	}
	if !s.LastActivity.IsZero() {
		la := s.LastActivity
		p.LastActivity = &la
	}
	return p
}

// RegisterRoutes registers auth routes and the gated admin views.
func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		// Public auth routes
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/session", h.Session)
		r.Post("/auth/activity", h.Activity)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/auth/me/permissions", h.Permissions)

			r.With(h.RequirePermissions(false, permission.PermViewDashboard)).
				Get("/dashboard", h.Dashboard)
			r.With(h.RequirePermissions(false, permission.PermViewLogs)).
				Get("/audit/events", h.AuditEvents)
		})
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates admin credentials and starts a session. Every
// failure produces the same generic message so the response never reveals
// whether the email or the password was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	session, err := h.authority.Login(ctx, req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		h.respondWithError(w, http.StatusUnauthorized,
			errors.New("invalid credentials"), "Invalid credentials")
		return
	}

	h.setSessionCookie(w, session.Token)
	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"user":  sessionPayload(session),
		"token": session.Token,
	}, "Login successful"))
	h.logger.Info("Admin login via HTTP",
		util.Int("admin_id", session.AdminID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Login"),
	)
}

// Logout ends the session for the presented token. Logging out without a
// live session succeeds; the end state is the same.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := h.sessionToken(r)
	if err := h.authority.Logout(ctx, token, r.RemoteAddr); err != nil {
		h.respondWithError(w, http.StatusInternalServerError, err, "Failed to log out")
		return
	}

	h.clearSessionCookie(w)
	h.respondWithJSON(w, http.StatusOK, successResponse(nil, "Logged out"))
}

// Session restores the session for the presented token. The response
// always succeeds; authenticated reports whether a live session exists.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.authority.Restore(ctx, h.sessionToken(r))
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, err, "Failed to restore session")
		return
	}

	if session == nil {
		h.clearSessionCookie(w)
		h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
			"authenticated": false,
		}, ""))
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"authenticated": true,
		"user":          sessionPayload(session),
	}, ""))
}

// Activity stamps last-activity on the session. Without a live session
// this is a no-op that still succeeds.
func (h *AuthHandler) Activity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.authority.UpdateActivity(ctx, h.sessionToken(r))
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, err, "Failed to update activity")
		return
	}

	if session == nil {
		h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
			"authenticated": false,
		}, ""))
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"authenticated": true,
		"lastActivity":  session.LastActivity,
	}, ""))
}

// Permissions lists the caller's role and effective permissions.
func (h *AuthHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"role":        session.Role,
		"permissions": h.authority.Permissions(session),
	}, ""))
}

// Dashboard is the admin landing view, gated on view_dashboard.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"name":       session.Name,
		"role":       session.Role,
		"loginTime":  session.LoginTime,
		"serverTime": time.Now().UTC(),
	}, "Welcome back"))
}

// AuditEvents searches the security event stream, gated on view_logs.
func (h *AuthHandler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.recorder == nil {
		h.respondWithError(w, http.StatusServiceUnavailable,
			errors.New("audit search is not configured"), "Audit search unavailable")
		return
	}

	q := r.URL.Query()
	size := 0
	if raw := q.Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, err, "Invalid size parameter")
			return
		}
		size = parsed
	}

	result, err := h.recorder.Search(ctx, q.Get("event_type"), q.Get("email"), size)
	if err != nil {
		h.respondWithError(w, http.StatusServiceUnavailable, err, "Audit search failed")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(result, ""))
}

// sessionToken pulls the session token from the cookie, falling back to a
// bearer Authorization header for non-browser clients.
func (h *AuthHandler) sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(h.session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const prefix = "Bearer "
	if auth := r.Header.Get("Authorization"); len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

func (h *AuthHandler) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, errorResponse(err, message))
}
