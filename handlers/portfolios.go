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

type PortfolioHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *scs.SessionManager
}

func NewPortfolioHandler(db *sql.DB, cfg cliparse.Config, sessions *scs.SessionManager) *PortfolioHandler {
	return &PortfolioHandler{db: db, cfg: cfg, sessions: sessions}
}

// List handles GET /api/portfolios
// Portfolios are ordered by accumulated votes, most first.
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT ` + prefixColumns("p", portfolioColumns) + `, u.name
		FROM portfolio p
		JOIN app_user u ON u.id = p.user_id
		ORDER BY p.total_votes DESC, p.created_at ASC
	`)
	if err != nil {
		slog.Error("failed to query portfolios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	portfolios := []models.PortfolioSummary{}
	for rows.Next() {
		var s models.PortfolioSummary
		err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Bio, &s.TotalVotes, &s.CreatedAt, &s.OwnerName)
		if err != nil {
			slog.Error("failed to scan portfolio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		portfolios = append(portfolios, s)
	}

	middleware.JSONResponse(w, http.StatusOK, models.PortfolioListResponse{Portfolios: portfolios})
}

// GetByUser handles GET /api/portfolios/:user_id
// Returns the portfolio, its owner, and the works in curated order.
func (h *PortfolioHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	portfolio, err := scanPortfolio(h.db.QueryRow(
		`SELECT `+portfolioColumns+` FROM portfolio WHERE user_id = $1`, userID))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Portfolio not found")
		return
	}
	if err != nil {
		slog.Error("failed to query portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	owner, err := getUser(h.db, userID)
	if err != nil {
		slog.Error("failed to query portfolio owner", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT `+prefixColumns("w", workColumns)+`
		FROM work w
		JOIN portfolio_work pw ON pw.work_id = w.id
		WHERE pw.portfolio_id = $1
		ORDER BY pw.position ASC
	`, portfolio.ID)
	if err != nil {
		slog.Error("failed to query portfolio works", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	works := []models.Work{}
	sum := 0
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			rows.Close()
			slog.Error("failed to scan work", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		works = append(works, work)
		sum += work.VoteCount
	}
	rows.Close()

	// Heal drift between the stored total and the per-work counts.
	if sum != portfolio.TotalVotes {
		_, err := h.db.Exec(`UPDATE portfolio SET total_votes = $1 WHERE id = $2`, sum, portfolio.ID)
		if err != nil {
			slog.Error("failed to refresh portfolio total", "error", err)
		} else {
			portfolio.TotalVotes = sum
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.PortfolioWithWorks{
		Portfolio: portfolio,
		Owner:     owner,
		Works:     works,
	})
}

// Create handles POST /api/portfolios (members and admins)
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context(), h.sessions)
	userType := auth.UserType(r.Context(), h.sessions)
	if userType == models.TypeGuest {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only members can create a portfolio")
		return
	}

	var req models.CreatePortfolioRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	portfolio := models.Portfolio{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Bio:       req.Bio,
		CreatedAt: time.Now(),
	}

	_, err := h.db.Exec(`
		INSERT INTO portfolio (id, user_id, title, bio, total_votes, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`, portfolio.ID, portfolio.UserID, portfolio.Title, portfolio.Bio, portfolio.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Portfolio already exists")
			return
		}
		slog.Error("failed to insert portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create portfolio")
		return
	}

	slog.Info("portfolio created", "portfolio_id", portfolio.ID, "user_id", userID)

	middleware.JSONResponse(w, http.StatusCreated, portfolio)
}

// Update handles PUT /api/portfolios/:user_id (owner or admin)
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	sessionUserID := auth.UserID(r.Context(), h.sessions)
	if userID != sessionUserID && !isAdmin(h.db, sessionUserID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot edit another member's portfolio")
		return
	}

	var req models.UpdatePortfolioRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.db.Exec(`
		UPDATE portfolio SET title = $1, bio = $2 WHERE user_id = $3
	`, strings.TrimSpace(req.Title), req.Bio, userID)
	if err != nil {
		slog.Error("failed to update portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update portfolio")
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Portfolio not found")
		return
	}

	portfolio, err := scanPortfolio(h.db.QueryRow(
		`SELECT `+portfolioColumns+` FROM portfolio WHERE user_id = $1`, userID))
	if err != nil {
		slog.Error("failed to reload portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, portfolio)
}

// Delete handles DELETE /api/portfolios/:user_id (owner or admin)
// The portfolio's ordering rows go with it; the works themselves survive.
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	sessionUserID := auth.UserID(r.Context(), h.sessions)
	if userID != sessionUserID && !isAdmin(h.db, sessionUserID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot delete another member's portfolio")
		return
	}

	result, err := h.db.Exec(`DELETE FROM portfolio WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("failed to delete portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete portfolio")
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Portfolio not found")
		return
	}

	slog.Info("portfolio deleted", "user_id", userID)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
