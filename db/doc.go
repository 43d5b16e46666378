// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles driver selection and database schema creation.

# Opening a Connection

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"sqlite" (the default) uses the pure-Go modernc.org/sqlite driver with
foreign keys and a busy timeout enabled; "postgres" uses lib/pq. All queries
in the codebase use $1-style placeholders, which both drivers accept.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - app_user: Accounts, roles, and approval state
  - session: Server-side session records (cookie token -> payload)
  - theme: Time-boxed voting campaigns with derived status and winner
  - work: Uploaded creative works with denormalized vote counts
  - portfolio: One per member, with denormalized total votes
  - portfolio_work: Ordered work list per portfolio
  - theme_work: Works submitted to a theme
  - vote: One row per (user, work, theme) vote

# Relationships

	app_user 1──1 portfolio
	portfolio 1──* portfolio_work *──1 work
	app_user 1──* work
	theme 1──* theme_work *──1 work
	app_user 1──* vote *──1 work

Deleting a user cascades to their portfolio, works, and votes. Deleting a
work cascades to its portfolio entries, theme submissions, and votes.

# Vote Uniqueness

vote.theme_id stores '' for unscoped votes instead of NULL, because SQL
treats NULLs as distinct in UNIQUE constraints. The UNIQUE(user_id, work_id,
theme_id) constraint is therefore the final authority against double voting
in both the scoped and unscoped case.
*/
package db
