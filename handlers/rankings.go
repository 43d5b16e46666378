// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/laezzii/LenteXhibit/cliparse"
	"github.com/laezzii/LenteXhibit/middleware"
	"github.com/laezzii/LenteXhibit/models"
)

type RankingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewRankingHandler(db *sql.DB, cfg cliparse.Config) *RankingHandler {
	return &RankingHandler{db: db, cfg: cfg}
}

// Get handles GET /api/rankings?category=...&limit=...
// Works are ranked by vote count, ties broken by earliest upload then work
// ID so the ordering is stable across requests.
func (h *RankingHandler) Get(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = models.CategoryAll
	}
	if category != models.CategoryAll && !models.ValidWorkCategory(category) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid category")
		return
	}

	limit := h.cfg.RankingsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	query := `SELECT ` + workColumns + ` FROM work`
	args := []any{}
	if category != models.CategoryAll {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	args = append(args, limit)
	query += ` ORDER BY vote_count DESC, created_at ASC, id ASC LIMIT $` + strconv.Itoa(len(args))

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query rankings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	ranked := []models.RankedWork{}
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			slog.Error("failed to scan work", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ranked = append(ranked, models.RankedWork{Work: work, Rank: len(ranked) + 1})
	}

	middleware.JSONResponse(w, http.StatusOK, models.RankingsResponse{
		Category: category,
		Works:    ranked,
	})
}
