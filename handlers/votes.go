// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/laezzii/LenteXhibit/auth"
	"github.com/laezzii/LenteXhibit/cliparse"
	"github.com/laezzii/LenteXhibit/middleware"
	"github.com/laezzii/LenteXhibit/models"
)

type VoteHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *scs.SessionManager
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, sessions *scs.SessionManager) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg, sessions: sessions}
}

// Create handles POST /api/votes
// Without theme_id the vote is unscoped; with theme_id it counts toward the
// theme's winner and requires the theme to be active and the work submitted
// to it. A user can hold at most one vote per (work, scope) pair, enforced
// by the unique index so concurrent duplicates collapse to a single 409.
func (h *VoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context(), h.sessions)

	var req models.CreateVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.WorkID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "work_id is required")
		return
	}

	work, err := getWork(h.db, req.WorkID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Work not found")
		return
	}
	if err != nil {
		slog.Error("failed to query work", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()

	if req.ThemeID != "" {
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
		if err := AdvanceTheme(h.db, &theme, now); err != nil {
			slog.Error("failed to advance theme", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if theme.Status != models.ThemeActive {
			middleware.ErrorResponse(w, http.StatusConflict, "Theme is not active")
			return
		}

		var submitted bool
		err = h.db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM theme_work WHERE theme_id = $1 AND work_id = $2)
		`, req.ThemeID, req.WorkID).Scan(&submitted)
		if err != nil {
			slog.Error("failed to check theme submission", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !submitted {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Work is not submitted to this theme")
			return
		}
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO vote (id, user_id, work_id, theme_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userID, req.WorkID, req.ThemeID, now)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Already voted for this work")
			return
		}
		slog.Error("failed to insert vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	_, err = tx.Exec(`UPDATE work SET vote_count = vote_count + 1 WHERE id = $1`, req.WorkID)
	if err != nil {
		slog.Error("failed to increment work vote count", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	_, err = tx.Exec(`
		UPDATE portfolio SET total_votes = total_votes + 1 WHERE user_id = $1
	`, work.OwnerID)
	if err != nil {
		slog.Error("failed to increment portfolio total", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	var voteCount int
	err = tx.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, req.WorkID).Scan(&voteCount)
	if err != nil {
		slog.Error("failed to read work vote count", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote recorded", "user_id", userID, "work_id", req.WorkID, "theme_id", req.ThemeID)

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{VoteCount: voteCount})
}

// Delete handles DELETE /api/votes/:work_id?theme_id=...
// Removes the caller's vote on the work in the given scope and reverses the
// counters, floored at zero so a stray delete can never drive them negative.
func (h *VoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context(), h.sessions)

	workID := r.PathValue("work_id")
	if workID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "work_id is required")
		return
	}
	themeID := r.URL.Query().Get("theme_id")

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		DELETE FROM vote WHERE user_id = $1 AND work_id = $2 AND theme_id = $3
	`, userID, workID, themeID)
	if err != nil {
		slog.Error("failed to delete vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove vote")
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Vote not found")
		return
	}

	_, err = tx.Exec(`
		UPDATE work SET vote_count = CASE WHEN vote_count > 0 THEN vote_count - 1 ELSE 0 END
		WHERE id = $1
	`, workID)
	if err != nil {
		slog.Error("failed to decrement work vote count", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove vote")
		return
	}

	_, err = tx.Exec(`
		UPDATE portfolio SET total_votes = CASE WHEN total_votes > 0 THEN total_votes - 1 ELSE 0 END
		WHERE user_id = (SELECT owner_id FROM work WHERE id = $1)
	`, workID)
	if err != nil {
		slog.Error("failed to decrement portfolio total", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove vote")
		return
	}

	var voteCount int
	err = tx.QueryRow(`SELECT vote_count FROM work WHERE id = $1`, workID).Scan(&voteCount)
	if err != nil {
		slog.Error("failed to read work vote count", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit vote removal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove vote")
		return
	}

	slog.Info("vote removed", "user_id", userID, "work_id", workID, "theme_id", themeID)

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{VoteCount: voteCount})
}
