// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"strings"

	"github.com/laezzii/LenteXhibit/models"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// load/scan helpers work inside and outside transactions.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a uniqueness-constraint failure.
// Matched by message because neither driver exposes a portable error code
// through database/sql.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

type scanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, name, email, user_type, cluster, batch, bio, is_approved, created_at`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.UserType, &u.Cluster, &u.Batch, &u.Bio, &u.IsApproved, &u.CreatedAt)
	return u, err
}

const workColumns = `id, title, description, category, file_url, owner_id, theme_id, vote_count, featured, created_at`

func scanWork(row scanner) (models.Work, error) {
	var w models.Work
	err := row.Scan(&w.ID, &w.Title, &w.Description, &w.Category, &w.FileURL, &w.OwnerID, &w.ThemeID, &w.VoteCount, &w.Featured, &w.CreatedAt)
	return w, err
}

const themeColumns = `id, title, description, category, starts_at, ends_at, status, winner_work_id, created_by, created_at`

func scanTheme(row scanner) (models.Theme, error) {
	var t models.Theme
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.StartsAt, &t.EndsAt, &t.Status, &t.WinnerWorkID, &t.CreatedBy, &t.CreatedAt)
	return t, err
}

const portfolioColumns = `id, user_id, title, bio, total_votes, created_at`

func scanPortfolio(row scanner) (models.Portfolio, error) {
	var p models.Portfolio
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Bio, &p.TotalVotes, &p.CreatedAt)
	return p, err
}

// prefixColumns qualifies a comma-separated column list with a table alias,
// for joins where bare column names would be ambiguous.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// isAdmin re-reads the caller's role from the database, so a demotion takes
// effect on the next request even while the old session still carries the
// admin type. Matches the admin route guard.
func isAdmin(q querier, userID string) bool {
	user, err := getUser(q, userID)
	return err == nil && user.UserType == models.TypeAdmin
}

func getUser(q querier, id string) (models.User, error) {
	return scanUser(q.QueryRow(`SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
}

func getWork(q querier, id string) (models.Work, error) {
	return scanWork(q.QueryRow(`SELECT `+workColumns+` FROM work WHERE id = $1`, id))
}

func getTheme(q querier, id string) (models.Theme, error) {
	return scanTheme(q.QueryRow(`SELECT `+themeColumns+` FROM theme WHERE id = $1`, id))
}
