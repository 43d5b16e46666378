// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides cookie session management and authorization guards.

# Sessions

NewSessionManager configures an scs.SessionManager whose records live in the
session table:

	sessions := auth.NewSessionManager(cfg, dbConn)
	handler := sessions.LoadAndSave(mux)

The cookie is HTTP-only, SameSite=Lax, named by SESSION_COOKIE_NAME, and
Secure when SESSION_SECURE is set. Sessions last at most 14 days with a
7-day rolling idle timeout.

Sign-in and sign-out wrap the token lifecycle:

	err := auth.SignIn(r.Context(), sessions, user)  // renews token, stores id + type
	err := auth.SignOut(r.Context(), sessions)       // destroys record, clears cookie

Handlers read the caller's identity with:

	userID := auth.UserID(r.Context(), sessions)
	userType := auth.UserType(r.Context(), sessions)

# Session Store

SQLStore implements scs.Store over the session table (Find, Commit, Delete),
so a session is a database row rather than ambient in-process state. Find
lazily deletes expired rows; DeleteExpired is available for housekeeping.

# Guards

Route-level authorization wrappers:

	mux.HandleFunc("POST /api/works", auth.RequireUser(sessions, h.Create))
	mux.HandleFunc("GET /api/users", auth.RequireAdmin(sessions, db, h.List))

RequireUser rejects unauthenticated requests with 401. RequireAdmin re-reads
the user's role from the database (401 if the account is gone — the session
is destroyed — and 403 unless the role is admin).
*/
package auth
