// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP handlers for the LenteXhibit API.

Each resource gets a handler struct holding the shared database handle, the
parsed configuration, and the session manager, constructed once at startup
and wired into the router:

	users := handlers.NewUserHandler(db, cfg, sessions)
	works := handlers.NewWorkHandler(db, cfg, sessions)

# Conventions

Handlers speak JSON on both sides. Success responses carry the resource (or
a typed wrapper from the models package); failures go through
middleware.ErrorResponse and carry {"error", "message"}. Validation failures
are 400, missing resources 404, permission failures 403, and uniqueness
conflicts 409.

Authorization has two layers. Route-level guards (auth.RequireUser,
auth.RequireAdmin) gate who can reach a handler at all; handlers that allow
"owner or admin" compare the session identity against the resource inside
the handler body.

# Counters

Vote counts are stored denormalized on work.vote_count and
portfolio.total_votes and are only ever changed by relative SQL updates
inside the same transaction as the vote row, so concurrent voters cannot
clobber each other. Decrements floor at zero.

# Theme lifecycle

Themes move upcoming -> active -> ended based on their window. There is no
background job; AdvanceTheme is invoked lazily from every read or write
that touches a theme, and the first transition into ended also records the
winner. See lifecycle.go.
*/
package handlers
