// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database. databaseType selects the driver:
// "sqlite" (default) or "postgres". For sqlite, foreign key enforcement and a
// busy timeout are enabled via DSN pragmas unless the caller set their own.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	switch databaseType {
	case "postgres":
		return sql.Open("postgres", databaseURL)
	case "", "sqlite":
		dsn := databaseURL
		if !strings.Contains(dsn, "_pragma=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
		return sql.Open("sqlite", dsn)
	default:
		return nil, fmt.Errorf("unsupported database type %q", databaseType)
	}
}
