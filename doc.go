// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the LenteXhibit API server.

LenteXhibit is a membership portfolio and voting platform: members upload
creative works (photos, graphics, videos), the community votes on them —
optionally inside time-boxed themes — and admins curate members, featured
works, and theme campaigns.

# Starting the Server

The server reads configuration from a .env file, environment variables, or
CLI flags:

	go run main.go

Or with flags:

	go run main.go -p 8080 -d "lentexhibit.db"

# Configuration

Optional settings:

  - PORT (-p): Server port (default: 4316)
  - DATABASE_URL (-d): Database path or connection string (default: lentexhibit.db)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)
  - SESSION_COOKIE_NAME: Session cookie name (default: lentexhibit_session)
  - SESSION_SECURE: Set Secure on the session cookie (default: false)
  - MEMBER_AUTO_APPROVE: Approve members at signup (default: true)
  - RANKINGS_LIMIT: Maximum rankings page size (default: 50)
  - STATIC_DIR: Static frontend directory (default: web)
  - BASE_URL: Public base URL (default: http://localhost:PORT)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (users, works, votes, themes, portfolios, rankings)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types and theme status derivation
  - auth: Session management and authorization guards
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
