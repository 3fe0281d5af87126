package handler

import (
	"context"
	"net/http"

	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/permission"
	"unipathway-admin-auth/internal/util"
)

type contextKey string

const sessionContextKey contextKey = "admin_session"

// SessionFromContext returns the session attached by RequireAuth, or nil
// outside an authenticated route.
func SessionFromContext(ctx context.Context) *models.AdminSession {
	session, _ := ctx.Value(sessionContextKey).(*models.AdminSession)
	return session
}

// RequireAuth resolves the request's session token and rejects the request
// when no live session exists. Any resolution failure means logged out:
// an expired, corrupt or unreadable session gets the same 401 as a missing
// one, with a redirect hint for the admin login page.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.authority.Restore(r.Context(), h.sessionToken(r))
		if err != nil {
			util.Warn("Session restore failed, treating as unauthenticated",
				util.ErrorField(err))
			session = nil
		}

		if session == nil {
			h.clearSessionCookie(w)
			h.respondWithJSON(w, http.StatusUnauthorized, Response{
				Success: false,
				Error:   "authentication required",
				Message: "Please log in to access the admin panel",
				Data: map[string]interface{}{
					"redirect": "/admin/login",
				},
			})
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermissions gates a route on the caller's role. requireAll
// selects AND semantics over the listed permissions; super_admin passes
// every gate. The 403 body names the caller's role and the permissions
// the view needs so the frontend can render a meaningful denial.
func (h *AuthHandler) RequirePermissions(requireAll bool, perms ...permission.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())

			if h.authority.Authorize(session, perms, requireAll) != permission.Authorized {
				role := ""
				if session != nil {
					role = session.Role
				}
				h.respondWithJSON(w, http.StatusForbidden, Response{
					Success: false,
					Error:   "access denied",
					Message: "You don't have permission to access this page",
					Data: map[string]interface{}{
						"role":                 role,
						"required_permissions": perms,
						"require_all":          requireAll,
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
