// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/laezzii/LenteXhibit/cliparse"
	"github.com/laezzii/LenteXhibit/middleware"
	"github.com/laezzii/LenteXhibit/models"
)

// Session payload keys
const (
	sessionUserIDKey   = "auth:user:id"
	sessionUserTypeKey = "auth:user:type"
)

// Session lifetime policy: 14-day absolute cap with a 7-day rolling idle
// window. The idle window resets on every request that touches the session.
const (
	sessionLifetime    = 14 * 24 * time.Hour
	sessionIdleTimeout = 7 * 24 * time.Hour
)

// NewSessionManager builds the scs session manager used across the API.
// Session records are persisted in the session table of the given database,
// never in process memory.
func NewSessionManager(cfg cliparse.Config, db *sql.DB) *scs.SessionManager {
	sm := scs.New()
	sm.Store = NewSQLStore(db)
	sm.Lifetime = sessionLifetime
	sm.IdleTimeout = sessionIdleTimeout
	sm.Cookie.Name = cfg.SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.SessionSecure
	return sm
}

// SignIn establishes a session for the given user. The token is renewed so a
// pre-login cookie can never be replayed as an authenticated one.
func SignIn(ctx context.Context, sm *scs.SessionManager, user models.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, sessionUserIDKey, user.ID)
	sm.Put(ctx, sessionUserTypeKey, user.UserType)
	return nil
}

// SignOut destroys the session record and instructs the client to drop the
// cookie.
func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// UserID returns the signed-in user's ID, or "" if the request carries no
// authenticated session.
func UserID(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, sessionUserIDKey)
}

// UserType returns the user type recorded at sign-in.
func UserType(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, sessionUserTypeKey)
}

// RequireUser guards a handler: requests without a signed-in user get 401.
func RequireUser(sm *scs.SessionManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context(), sm) == "" {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next(w, r)
	}
}

// RequireAdmin guards a handler: the user must be signed in and their
// current database record must carry the admin role. The role is re-read
// rather than trusted from the session so a demotion takes effect
// immediately. If the user row is gone the session is destroyed.
func RequireAdmin(sm *scs.SessionManager, db *sql.DB, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := UserID(r.Context(), sm)
		if userID == "" {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var userType string
		err := db.QueryRow(`SELECT user_type FROM app_user WHERE id = $1`, userID).Scan(&userType)
		if err == sql.ErrNoRows {
			if destroyErr := sm.Destroy(r.Context()); destroyErr != nil {
				slog.Error("failed to destroy orphaned session", "error", destroyErr)
			}
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if err != nil {
			slog.Error("failed to load user for admin check", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		if userType != models.TypeAdmin {
			middleware.ErrorResponse(w, http.StatusForbidden, "Admin access required")
			return
		}

		next(w, r)
	}
}
