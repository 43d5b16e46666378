// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires the HTTP routes for the LenteXhibit API.

NewRouter builds the full handler chain:

	CORS -> session load/save -> mux -> per-route logging -> auth guard -> handler

Routes use Go 1.22 method patterns on the standard ServeMux. Reads on works,
themes, portfolios, and rankings are public; mutations require a signed-in
user, and admin operations (user management, themes, featuring) go through
auth.RequireAdmin, which re-checks the role against the database on every
request.

Anything not matching /api/... or /health falls through to a file server
rooted at the configured static directory, which serves the frontend.
*/
package router
