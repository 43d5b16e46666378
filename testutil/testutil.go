// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/laezzii/LenteXhibit/auth"
	"github.com/laezzii/LenteXhibit/cliparse"
	"github.com/laezzii/LenteXhibit/db"
	"github.com/laezzii/LenteXhibit/models"
)

var dbCounter atomic.Int64

// SetupTestDB opens a fresh in-memory sqlite database with the full schema.
// Each call gets its own database, so tests never see each other's rows.
// The pool is pinned to a single connection because a shared-cache memory
// database vanishes when its last connection closes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              4316,
		DatabaseType:      "sqlite",
		SessionCookieName: "lentexhibit_session",
		MemberAutoApprove: true,
		RankingsLimit:     50,
		StaticDir:         "web",
	}
}

// NewTestSessions builds a session manager backed by the test database.
func NewTestSessions(conn *sql.DB) *scs.SessionManager {
	return auth.NewSessionManager(GetTestConfig(), conn)
}

// WithSession wraps a handler so it runs with a loaded session that is
// already signed in as the given user. Tests invoke handlers through this
// instead of plumbing cookies.
func WithSession(sm *scs.SessionManager, user models.User, next http.HandlerFunc) http.Handler {
	return sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.SignIn(r.Context(), sm, user); err != nil {
			panic(err)
		}
		next(w, r)
	}))
}

// WithoutSession wraps a handler so it runs with session loading but no
// signed-in user.
func WithoutSession(sm *scs.SessionManager, next http.HandlerFunc) http.Handler {
	return sm.LoadAndSave(next)
}

// CreateTestUser inserts an approved user and returns it.
func CreateTestUser(t *testing.T, conn *sql.DB, name, userType string) models.User {
	t.Helper()

	user := models.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      fmt.Sprintf("%s@example.com", uuid.NewString()),
		UserType:   userType,
		IsApproved: true,
		CreatedAt:  time.Now(),
	}
	_, err := conn.Exec(`
		INSERT INTO app_user (id, name, email, user_type, cluster, batch, bio, is_approved, created_at)
		VALUES ($1, $2, $3, $4, '', '', '', TRUE, $5)
	`, user.ID, user.Name, user.Email, user.UserType, user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestWork inserts a work owned by ownerID and returns it.
func CreateTestWork(t *testing.T, conn *sql.DB, ownerID, category string) models.Work {
	t.Helper()

	work := models.Work{
		ID:        uuid.NewString(),
		Title:     "Test Work",
		Category:  category,
		FileURL:   "https://cdn.example.com/" + uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	_, err := conn.Exec(`
		INSERT INTO work (id, title, description, category, file_url, owner_id, vote_count, featured, created_at)
		VALUES ($1, $2, '', $3, $4, $5, 0, FALSE, $6)
	`, work.ID, work.Title, work.Category, work.FileURL, work.OwnerID, work.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test work: %v", err)
	}

	return work
}

// CreateTestPortfolio inserts a portfolio for userID and returns it.
func CreateTestPortfolio(t *testing.T, conn *sql.DB, userID string) models.Portfolio {
	t.Helper()

	portfolio := models.Portfolio{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "Test Portfolio",
		CreatedAt: time.Now(),
	}
	_, err := conn.Exec(`
		INSERT INTO portfolio (id, user_id, title, bio, total_votes, created_at)
		VALUES ($1, $2, $3, '', 0, $4)
	`, portfolio.ID, portfolio.UserID, portfolio.Title, portfolio.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return portfolio
}

// AddPortfolioWork links a work into a portfolio at the next position.
func AddPortfolioWork(t *testing.T, conn *sql.DB, portfolioID, workID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO portfolio_work (portfolio_id, work_id, position, added_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM portfolio_work WHERE portfolio_id = $1), $3)
	`, portfolioID, workID, time.Now())
	if err != nil {
		t.Fatalf("Failed to add work to portfolio: %v", err)
	}
}

// CreateTestTheme inserts a theme with the given window, created by
// createdBy, with the status derived from the window.
func CreateTestTheme(t *testing.T, conn *sql.DB, createdBy, category string, startsAt, endsAt time.Time) models.Theme {
	t.Helper()

	theme := models.Theme{
		ID:        uuid.NewString(),
		Title:     "Test Theme",
		Category:  category,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Status:    models.ThemeStatusAt(startsAt, endsAt, time.Now()),
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	_, err := conn.Exec(`
		INSERT INTO theme (id, title, description, category, starts_at, ends_at, status, winner_work_id, created_by, created_at)
		VALUES ($1, $2, '', $3, $4, $5, $6, NULL, $7, $8)
	`, theme.ID, theme.Title, theme.Category, theme.StartsAt, theme.EndsAt, theme.Status, theme.CreatedBy, theme.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test theme: %v", err)
	}

	return theme
}

// SubmitTestWork links a work into a theme's submission list.
func SubmitTestWork(t *testing.T, conn *sql.DB, themeID, workID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO theme_work (theme_id, work_id, submitted_at) VALUES ($1, $2, $3)
	`, themeID, workID, time.Now())
	if err != nil {
		t.Fatalf("Failed to submit test work: %v", err)
	}
	_, err = conn.Exec(`UPDATE work SET theme_id = $1 WHERE id = $2`, themeID, workID)
	if err != nil {
		t.Fatalf("Failed to link test work to theme: %v", err)
	}
}

// CreateTestVote inserts a vote row and bumps the denormalized counters the
// same way the vote handler does. themeID may be "" for an unscoped vote.
func CreateTestVote(t *testing.T, conn *sql.DB, userID, workID, themeID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO vote (id, user_id, work_id, theme_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userID, workID, themeID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	_, err = conn.Exec(`UPDATE work SET vote_count = vote_count + 1 WHERE id = $1`, workID)
	if err != nil {
		t.Fatalf("Failed to bump test vote count: %v", err)
	}
	_, err = conn.Exec(`
		UPDATE portfolio SET total_votes = total_votes + 1
		WHERE user_id = (SELECT owner_id FROM work WHERE id = $1)
	`, workID)
	if err != nil {
		t.Fatalf("Failed to bump test portfolio total: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
