// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/laezzii/LenteXhibit/models"
)

// AdvanceTheme recomputes the theme's status from now and persists the
// transition if the stored value is stale. The first transition into the
// ended state also records the winner, inside the same transaction, so the
// winner is determined exactly once no matter how many readers race on the
// transition. Idempotent: calling it again with the same clock is a no-op.
//
// The theme struct is updated in place on success.
func AdvanceTheme(db *sql.DB, theme *models.Theme, now time.Time) error {
	derived := models.ThemeStatusAt(theme.StartsAt, theme.EndsAt, now)
	if derived == theme.Status {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	winner := theme.WinnerWorkID
	if derived == models.ThemeEnded && theme.WinnerWorkID == nil {
		winnerID, err := computeWinner(tx, theme.ID)
		if err != nil {
			return fmt.Errorf("failed to compute winner: %w", err)
		}
		if winnerID != "" {
			winner = &winnerID
		}
	}

	// Guard on the stored status so a concurrent reader that already
	// advanced the theme wins and this update becomes a no-op.
	result, err := tx.Exec(`
		UPDATE theme SET status = $1, winner_work_id = $2 WHERE id = $3 AND status = $4
	`, derived, winner, theme.ID, theme.Status)
	if err != nil {
		return fmt.Errorf("failed to persist theme status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit theme transition: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		// Lost the race; reload what the other writer persisted.
		reloaded, err := getTheme(db, theme.ID)
		if err != nil {
			return fmt.Errorf("failed to reload theme: %w", err)
		}
		*theme = reloaded
		return nil
	}

	slog.Info("theme advanced", "theme_id", theme.ID, "from", theme.Status, "to", derived)

	theme.Status = derived
	theme.WinnerWorkID = winner
	return nil
}

// computeWinner aggregates the theme-scoped votes over the theme's submitted
// works and returns the work with the most votes. Ties break to the work
// submitted to the theme earliest, then to the smaller work ID, so the
// outcome is deterministic. Returns "" when no scoped votes exist.
func computeWinner(q querier, themeID string) (string, error) {
	var workID string
	err := q.QueryRow(`
		SELECT v.work_id
		FROM vote v
		JOIN theme_work tw ON tw.theme_id = $1 AND tw.work_id = v.work_id
		WHERE v.theme_id = $1
		GROUP BY v.work_id, tw.submitted_at
		ORDER BY COUNT(*) DESC, tw.submitted_at ASC, v.work_id ASC
		LIMIT 1
	`, themeID).Scan(&workID)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return workID, nil
}

// submitToTheme runs the submission precondition chain and links the work to
// the theme. The caller must pass a theme that has already been advanced to
// the current time and must hold the transaction. Returns a non-zero HTTP
// status with a message when a precondition fails.
func submitToTheme(tx querier, theme models.Theme, work models.Work, now time.Time) (int, string) {
	if theme.Status != models.ThemeActive {
		return 409, "Theme is not active"
	}
	if theme.Category != models.CategoryAll && theme.Category != work.Category {
		return 400, "Work category does not match theme category"
	}

	var exists bool
	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM theme_work WHERE theme_id = $1 AND work_id = $2)
	`, theme.ID, work.ID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check theme submission", "error", err)
		return 500, "Database error"
	}
	if exists {
		return 409, "Work already submitted to this theme"
	}

	_, err = tx.Exec(`
		INSERT INTO theme_work (theme_id, work_id, submitted_at) VALUES ($1, $2, $3)
	`, theme.ID, work.ID, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 409, "Work already submitted to this theme"
		}
		slog.Error("failed to insert theme submission", "error", err)
		return 500, "Failed to submit work"
	}

	_, err = tx.Exec(`UPDATE work SET theme_id = $1 WHERE id = $2`, theme.ID, work.ID)
	if err != nil {
		slog.Error("failed to link work to theme", "error", err)
		return 500, "Failed to submit work"
	}

	return 0, ""
}
