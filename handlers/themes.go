// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/laezzii/LenteXhibit/auth"
	"github.com/laezzii/LenteXhibit/cliparse"
	"github.com/laezzii/LenteXhibit/middleware"
	"github.com/laezzii/LenteXhibit/models"
)

type ThemeHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *scs.SessionManager
}

func NewThemeHandler(db *sql.DB, cfg cliparse.Config, sessions *scs.SessionManager) *ThemeHandler {
	return &ThemeHandler{db: db, cfg: cfg, sessions: sessions}
}

// listThemes loads all themes, fully draining the result set before any
// lifecycle writes happen, then lazily advances each theme to now.
func (h *ThemeHandler) listThemes(now time.Time) ([]models.Theme, error) {
	rows, err := h.db.Query(`SELECT ` + themeColumns + ` FROM theme ORDER BY starts_at DESC`)
	if err != nil {
		return nil, err
	}

	themes := []models.Theme{}
	for rows.Next() {
		theme, err := scanTheme(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		themes = append(themes, theme)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range themes {
		if err := AdvanceTheme(h.db, &themes[i], now); err != nil {
			return nil, err
		}
	}
	return themes, nil
}

// List handles GET /api/themes
func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.listThemes(time.Now())
	if err != nil {
		slog.Error("failed to list themes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ThemeListResponse{Themes: themes})
}

// Active handles GET /api/themes/active
func (h *ThemeHandler) Active(w http.ResponseWriter, r *http.Request) {
	themes, err := h.listThemes(time.Now())
	if err != nil {
		slog.Error("failed to list themes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	active := []models.Theme{}
	for _, theme := range themes {
		if theme.Status == models.ThemeActive {
			active = append(active, theme)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.ThemeListResponse{Themes: active})
}

// Get handles GET /api/themes/:id
// Returns the theme together with its submitted works in submission order.
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	themeID := r.PathValue("id")
	if themeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "theme id is required")
		return
	}

	theme, err := getTheme(h.db, themeID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Theme not found")
		return
	}
	if err != nil {
		slog.Error("failed to query theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := AdvanceTheme(h.db, &theme, time.Now()); err != nil {
		slog.Error("failed to advance theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT `+prefixColumns("w", workColumns)+`
		FROM work w
		JOIN theme_work tw ON tw.work_id = w.id
		WHERE tw.theme_id = $1
		ORDER BY tw.submitted_at ASC
	`, themeID)
	if err != nil {
		slog.Error("failed to query theme works", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	works := []models.Work{}
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			slog.Error("failed to scan work", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		works = append(works, work)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ThemeWithWorks{
		Theme: theme,
		Works: works,
	})
}

// Create handles POST /api/themes (admin only)
func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateThemeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if !models.ValidThemeCategory(req.Category) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category must be Photos, Graphics, Videos, or All")
		return
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "starts_at and ends_at are required")
		return
	}
	if !req.StartsAt.Before(req.EndsAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "starts_at must be before ends_at")
		return
	}

	now := time.Now()
	theme := models.Theme{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      models.ThemeStatusAt(req.StartsAt, req.EndsAt, now),
		CreatedBy:   auth.UserID(r.Context(), h.sessions),
		CreatedAt:   now,
	}

	_, err := h.db.Exec(`
		INSERT INTO theme (id, title, description, category, starts_at, ends_at, status, winner_work_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, $9)
	`, theme.ID, theme.Title, theme.Description, theme.Category, theme.StartsAt, theme.EndsAt, theme.Status, theme.CreatedBy, theme.CreatedAt)
	if err != nil {
		slog.Error("failed to insert theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create theme")
		return
	}

	slog.Info("theme created", "theme_id", theme.ID, "title", theme.Title, "status", theme.Status)

	middleware.JSONResponse(w, http.StatusCreated, theme)
}

// Update handles PUT /api/themes/:id (admin only)
// Changing the window re-derives the status; shortening an active theme
// into the past ends it and determines its winner on the spot.
func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	themeID := r.PathValue("id")
	if themeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "theme id is required")
		return
	}

	theme, err := getTheme(h.db, themeID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Theme not found")
		return
	}
	if err != nil {
		slog.Error("failed to query theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.UpdateThemeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if !models.ValidThemeCategory(req.Category) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category must be Photos, Graphics, Videos, or All")
		return
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "starts_at and ends_at are required")
		return
	}
	if !req.StartsAt.Before(req.EndsAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "starts_at must be before ends_at")
		return
	}

	_, err = h.db.Exec(`
		UPDATE theme SET title = $1, description = $2, category = $3, starts_at = $4, ends_at = $5
		WHERE id = $6
	`, req.Title, req.Description, req.Category, req.StartsAt, req.EndsAt, themeID)
	if err != nil {
		slog.Error("failed to update theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update theme")
		return
	}

	theme.Title = req.Title
	theme.Description = req.Description
	theme.Category = req.Category
	theme.StartsAt = req.StartsAt
	theme.EndsAt = req.EndsAt

	// The new window may move the theme into a different lifecycle state.
	if err := AdvanceTheme(h.db, &theme, time.Now()); err != nil {
		slog.Error("failed to advance theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, theme)
}

// Delete handles DELETE /api/themes/:id (admin only)
// Theme-scoped votes disappear with the theme, so the per-work counts and
// portfolio totals they contributed are reversed first.
func (h *ThemeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	themeID := r.PathValue("id")
	if themeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "theme id is required")
		return
	}

	if _, err := getTheme(h.db, themeID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Theme not found")
		return
	} else if err != nil {
		slog.Error("failed to query theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Per-work scoped vote totals, collected before the votes go away.
	type voteTotal struct {
		workID  string
		ownerID string
		count   int
	}
	rows, err := tx.Query(`
		SELECT v.work_id, w.owner_id, COUNT(*)
		FROM vote v
		JOIN work w ON w.id = v.work_id
		WHERE v.theme_id = $1
		GROUP BY v.work_id, w.owner_id
	`, themeID)
	if err != nil {
		slog.Error("failed to query theme votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete theme")
		return
	}
	totals := []voteTotal{}
	for rows.Next() {
		var vt voteTotal
		if err := rows.Scan(&vt.workID, &vt.ownerID, &vt.count); err != nil {
			rows.Close()
			slog.Error("failed to scan theme votes", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete theme")
			return
		}
		totals = append(totals, vt)
	}
	rows.Close()

	for _, vt := range totals {
		_, err = tx.Exec(`
			UPDATE work SET vote_count = CASE WHEN vote_count > $1 THEN vote_count - $1 ELSE 0 END
			WHERE id = $2
		`, vt.count, vt.workID)
		if err != nil {
			slog.Error("failed to reverse work vote count", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete theme")
			return
		}
		_, err = tx.Exec(`
			UPDATE portfolio SET total_votes = CASE WHEN total_votes > $1 THEN total_votes - $1 ELSE 0 END
			WHERE user_id = $2
		`, vt.count, vt.ownerID)
		if err != nil {
			slog.Error("failed to reverse portfolio total", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete theme")
			return
		}
	}

	if _, err := tx.Exec(`DELETE FROM vote WHERE theme_id = $1`, themeID); err != nil {
		slog.Error("failed to delete theme votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete theme")
		return
	}

	// theme_work rows cascade; work.theme_id clears via ON DELETE SET NULL.
	if _, err := tx.Exec(`DELETE FROM theme WHERE id = $1`, themeID); err != nil {
		slog.Error("failed to delete theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete theme")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit theme deletion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete theme")
		return
	}

	slog.Info("theme deleted", "theme_id", themeID)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
