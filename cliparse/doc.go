// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (via godotenv), then
CLI flags are parsed, then remaining values fall back to environment
variables. CLI flags take precedence over environment variables.

# Config Fields

  - Port: Server listen port (default: 4316)
  - DatabaseURL: Database path or connection string (default: lentexhibit.db)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - SessionCookieName: Session cookie name (default: lentexhibit_session)
  - SessionSecure: Secure attribute on the session cookie (default: false)
  - MemberAutoApprove: Approve member accounts at signup (default: true)
  - RankingsLimit: Maximum rankings page size (default: 50)
  - StaticDir: Static frontend directory (default: web)
  - BaseURL: Public base URL (default: http://localhost:PORT)

# CLI Flags

	-p       Server port
	-d       Database path or connection string
	-t       Database type (sqlite or postgres)
	-static  Static frontend directory

# Environment Variables

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	STATIC_DIR          → -static
	SESSION_COOKIE_NAME
	SESSION_SECURE
	MEMBER_AUTO_APPROVE
	RANKINGS_LIMIT
	BASE_URL

# Member Approval Policy

MEMBER_AUTO_APPROVE controls whether member accounts are usable immediately
after signup. When false, members sign up unapproved and cannot log in until
an admin approves them; guests and admins are always approved.
*/
package cliparse
