// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are always written explicitly from Go so the schema stays on the
// subset of SQL both sqlite and postgres accept.
const schema = `
-- Users
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    user_type TEXT NOT NULL DEFAULT 'guest' CHECK (user_type IN ('guest', 'member', 'admin')),
    cluster TEXT NOT NULL DEFAULT '',
    batch TEXT NOT NULL DEFAULT '',
    bio TEXT NOT NULL DEFAULT '',
    is_approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_app_user_email ON app_user(email);
CREATE INDEX IF NOT EXISTS idx_app_user_type ON app_user(user_type);

-- Sessions (payload managed by the session store)
CREATE TABLE IF NOT EXISTS session (
    token TEXT PRIMARY KEY,
    data BYTEA NOT NULL,
    expiry TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expiry ON session(expiry);

-- Themes
CREATE TABLE IF NOT EXISTS theme (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL CHECK (category IN ('All', 'Photos', 'Graphics', 'Videos')),
    starts_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL,
    status TEXT NOT NULL DEFAULT 'upcoming' CHECK (status IN ('upcoming', 'active', 'ended')),
    winner_work_id TEXT,
    created_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_theme_status ON theme(status);

-- Works
CREATE TABLE IF NOT EXISTS work (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL CHECK (category IN ('Photos', 'Graphics', 'Videos')),
    file_url TEXT NOT NULL,
    owner_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    theme_id TEXT REFERENCES theme(id) ON DELETE SET NULL,
    vote_count INTEGER NOT NULL DEFAULT 0,
    featured BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_work_owner_id ON work(owner_id);
CREATE INDEX IF NOT EXISTS idx_work_category ON work(category);
CREATE INDEX IF NOT EXISTS idx_work_vote_count ON work(vote_count);

-- Portfolios (one per member)
CREATE TABLE IF NOT EXISTS portfolio (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE REFERENCES app_user(id) ON DELETE CASCADE,
    title TEXT NOT NULL DEFAULT '',
    bio TEXT NOT NULL DEFAULT '',
    total_votes INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

-- Ordered work list per portfolio
CREATE TABLE IF NOT EXISTS portfolio_work (
    portfolio_id TEXT NOT NULL REFERENCES portfolio(id) ON DELETE CASCADE,
    work_id TEXT NOT NULL REFERENCES work(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    added_at TIMESTAMP NOT NULL,
    PRIMARY KEY (portfolio_id, work_id)
);

CREATE INDEX IF NOT EXISTS idx_portfolio_work_work ON portfolio_work(work_id);

-- Theme submission list
CREATE TABLE IF NOT EXISTS theme_work (
    theme_id TEXT NOT NULL REFERENCES theme(id) ON DELETE CASCADE,
    work_id TEXT NOT NULL REFERENCES work(id) ON DELETE CASCADE,
    submitted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (theme_id, work_id)
);

CREATE INDEX IF NOT EXISTS idx_theme_work_work ON theme_work(work_id);

-- Votes. theme_id is '' (never NULL) for unscoped votes so the UNIQUE
-- constraint is authoritative for both scoped and unscoped keys.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    work_id TEXT NOT NULL REFERENCES work(id) ON DELETE CASCADE,
    theme_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    UNIQUE (user_id, work_id, theme_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_work_id ON vote(work_id);
CREATE INDEX IF NOT EXISTS idx_vote_theme_id ON vote(theme_id);
`
