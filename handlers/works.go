// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/laezzii/LenteXhibit/auth"
	"github.com/laezzii/LenteXhibit/cliparse"
	"github.com/laezzii/LenteXhibit/middleware"
	"github.com/laezzii/LenteXhibit/models"
)

type WorkHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *scs.SessionManager
}

func NewWorkHandler(db *sql.DB, cfg cliparse.Config, sessions *scs.SessionManager) *WorkHandler {
	return &WorkHandler{db: db, cfg: cfg, sessions: sessions}
}

// List handles GET /api/works
// Supported filters: category, featured, search, user_id, theme_id, plus
// limit/skip paging and sort=recent|votes.
func (h *WorkHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	where := []string{}
	args := []any{}

	if category := query.Get("category"); category != "" && category != models.CategoryAll {
		if !models.ValidWorkCategory(category) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "invalid category")
			return
		}
		args = append(args, category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	if featured := query.Get("featured"); featured != "" {
		val, err := strconv.ParseBool(featured)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "featured must be true or false")
			return
		}
		args = append(args, val)
		where = append(where, fmt.Sprintf("featured = $%d", len(args)))
	}

	if search := query.Get("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern)
		n := len(args)
		args = append(args, pattern)
		where = append(where, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", n, n+1))
	}

	if userID := query.Get("user_id"); userID != "" {
		args = append(args, userID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	if themeID := query.Get("theme_id"); themeID != "" {
		args = append(args, themeID)
		where = append(where, fmt.Sprintf("theme_id = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	// Count before paging
	var count int
	err := h.db.QueryRow(`SELECT COUNT(*) FROM work`+whereClause, args...).Scan(&count)
	if err != nil {
		slog.Error("failed to count works", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	orderClause := " ORDER BY created_at DESC"
	if query.Get("sort") == models.SortVotes {
		orderClause = " ORDER BY vote_count DESC, created_at ASC"
	}

	limit := 20
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit > 100 {
			limit = 100
		}
	}
	skip := 0
	if skipStr := query.Get("skip"); skipStr != "" {
		skip, err = strconv.Atoi(skipStr)
		if err != nil || skip < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "skip must be a non-negative integer")
			return
		}
	}

	args = append(args, limit)
	limitClause := fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, skip)
	limitClause += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := h.db.Query(`SELECT `+workColumns+` FROM work`+whereClause+orderClause+limitClause, args...)
	if err != nil {
		slog.Error("failed to query works", "error", err)
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

	middleware.JSONResponse(w, http.StatusOK, models.WorkListResponse{
		Works: works,
		Count: count,
	})
}

// Get handles GET /api/works/:id
func (h *WorkHandler) Get(w http.ResponseWriter, r *http.Request) {
	workID := r.PathValue("id")
	if workID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "work id is required")
		return
	}

	work, err := getWork(h.db, workID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Work not found")
		return
	}
	if err != nil {
		slog.Error("failed to query work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, work)
}

// Create handles POST /api/works (members and admins)
// The owner's portfolio is created on first upload and the work is appended
// to its ordered list. An optional theme_id runs the submission chain.
func (h *WorkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context(), h.sessions)
	userType := auth.UserType(r.Context(), h.sessions)
	if userType == models.TypeGuest {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only members can upload works")
		return
	}

	var req models.CreateWorkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if !models.ValidWorkCategory(req.Category) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category must be Photos, Graphics, or Videos")
		return
	}
	if req.FileURL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file_url is required")
		return
	}

	now := time.Now()

	// Resolve and advance the target theme before opening the transaction.
	var theme models.Theme
	if req.ThemeID != "" {
		var err error
		theme, err = getTheme(h.db, req.ThemeID)
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusNotFound, "Theme not found")
			return
		}
		if err != nil {
			slog.Error("failed to query theme", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if err := AdvanceTheme(h.db, &theme, now); err != nil {
			slog.Error("failed to advance theme", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	work := models.Work{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		FileURL:     req.FileURL,
		OwnerID:     userID,
		CreatedAt:   now,
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO work (id, title, description, category, file_url, owner_id, vote_count, featured, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, FALSE, $7)
	`, work.ID, work.Title, work.Description, work.Category, work.FileURL, work.OwnerID, work.CreatedAt)
	if err != nil {
		slog.Error("failed to insert work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create work")
		return
	}

	// First upload creates the portfolio.
	var portfolioID string
	err = tx.QueryRow(`SELECT id FROM portfolio WHERE user_id = $1`, userID).Scan(&portfolioID)
	if err == sql.ErrNoRows {
		portfolioID = uuid.NewString()
		_, err = tx.Exec(`
			INSERT INTO portfolio (id, user_id, title, bio, total_votes, created_at)
			VALUES ($1, $2, '', '', 0, $3)
		`, portfolioID, userID, now)
	}
	if err != nil {
		slog.Error("failed to resolve portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create work")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO portfolio_work (portfolio_id, work_id, position, added_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM portfolio_work WHERE portfolio_id = $1), $3)
	`, portfolioID, work.ID, now)
	if err != nil {
		slog.Error("failed to append work to portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create work")
		return
	}

	if req.ThemeID != "" {
		if status, msg := submitToTheme(tx, theme, work, now); status != 0 {
			middleware.ErrorResponse(w, status, msg)
			return
		}
		work.ThemeID = &theme.ID
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit work creation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create work")
		return
	}

	slog.Info("work created", "work_id", work.ID, "owner_id", userID, "category", work.Category)

	middleware.JSONResponse(w, http.StatusCreated, work)
}

// Update handles PUT /api/works/:id (owner or admin)
func (h *WorkHandler) Update(w http.ResponseWriter, r *http.Request) {
	workID := r.PathValue("id")
	if workID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "work id is required")
		return
	}

	work, err := getWork(h.db, workID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Work not found")
		return
	}
	if err != nil {
		slog.Error("failed to query work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	userID := auth.UserID(r.Context(), h.sessions)
	if work.OwnerID != userID && !isAdmin(h.db, userID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot edit another member's work")
		return
	}

	var req models.UpdateWorkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.FileURL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file_url is required")
		return
	}

	_, err = h.db.Exec(`
		UPDATE work SET title = $1, description = $2, file_url = $3 WHERE id = $4
	`, req.Title, req.Description, req.FileURL, workID)
	if err != nil {
		slog.Error("failed to update work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update work")
		return
	}

	work.Title = req.Title
	work.Description = req.Description
	work.FileURL = req.FileURL

	middleware.JSONResponse(w, http.StatusOK, work)
}

// Delete handles DELETE /api/works/:id (owner or admin)
// Cascades remove the portfolio entry, theme submissions, and votes; the
// owner's portfolio total drops by the work's vote count, floored at zero.
func (h *WorkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workID := r.PathValue("id")
	if workID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "work id is required")
		return
	}

	work, err := getWork(h.db, workID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Work not found")
		return
	}
	if err != nil {
		slog.Error("failed to query work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	userID := auth.UserID(r.Context(), h.sessions)
	if work.OwnerID != userID && !isAdmin(h.db, userID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot delete another member's work")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE portfolio
		SET total_votes = CASE WHEN total_votes > $1 THEN total_votes - $1 ELSE 0 END
		WHERE user_id = $2
	`, work.VoteCount, work.OwnerID)
	if err != nil {
		slog.Error("failed to adjust portfolio total", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete work")
		return
	}

	_, err = tx.Exec(`DELETE FROM work WHERE id = $1`, workID)
	if err != nil {
		slog.Error("failed to delete work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete work")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit work deletion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete work")
		return
	}

	slog.Info("work deleted", "work_id", workID)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ToggleFeatured handles PATCH /api/works/:id/featured (admin only)
func (h *WorkHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	workID := r.PathValue("id")
	if workID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "work id is required")
		return
	}

	result, err := h.db.Exec(`UPDATE work SET featured = NOT featured WHERE id = $1`, workID)
	if err != nil {
		slog.Error("failed to toggle featured", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle featured")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Work not found")
		return
	}

	var featured bool
	err = h.db.QueryRow(`SELECT featured FROM work WHERE id = $1`, workID).Scan(&featured)
	if err != nil {
		slog.Error("failed to reload featured flag", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("work featured toggled", "work_id", workID, "featured", featured)

	middleware.JSONResponse(w, http.StatusOK, models.FeaturedResponse{
		WorkID:   workID,
		Featured: featured,
	})
}

// SubmitToTheme handles POST /api/works/:id/submit (owner only)
// Precondition chain: theme exists, theme is active, caller owns the work,
// categories match (or the theme is "All"), and the work is not already in
// the theme's submission list.
func (h *WorkHandler) SubmitToTheme(w http.ResponseWriter, r *http.Request) {
	workID := r.PathValue("id")
	if workID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "work id is required")
		return
	}

	var req models.SubmitWorkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ThemeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "theme_id is required")
		return
	}

	work, err := getWork(h.db, workID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Work not found")
		return
	}
	if err != nil {
		slog.Error("failed to query work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	userID := auth.UserID(r.Context(), h.sessions)
	if work.OwnerID != userID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the owner can submit a work")
		return
	}

	theme, err := getTheme(h.db, req.ThemeID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Theme not found")
		return
	}
	if err != nil {
		slog.Error("failed to query theme", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	if err := AdvanceTheme(h.db, &theme, now); err != nil {
		slog.Error("failed to advance theme", "error", err)
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

	if status, msg := submitToTheme(tx, theme, work, now); status != 0 {
		middleware.ErrorResponse(w, status, msg)
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit theme submission", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit work")
		return
	}

	slog.Info("work submitted to theme", "work_id", workID, "theme_id", theme.ID)

	work.ThemeID = &theme.ID
	middleware.JSONResponse(w, http.StatusOK, work)
}
