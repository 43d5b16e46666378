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

type UserHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *scs.SessionManager
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config, sessions *scs.SessionManager) *UserHandler {
	return &UserHandler{db: db, cfg: cfg, sessions: sessions}
}

// Signup handles POST /api/auth/signup
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if req.UserType == "" {
		req.UserType = models.TypeGuest
	}
	if !models.ValidUserType(req.UserType) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_type must be guest, member, or admin")
		return
	}

	// Guests and admins are usable immediately; members depend on the
	// configured approval policy.
	approved := req.UserType != models.TypeMember || h.cfg.MemberAutoApprove

	user := models.User{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		UserType:   req.UserType,
		Cluster:    req.Cluster,
		Batch:      req.Batch,
		Bio:        req.Bio,
		IsApproved: approved,
		CreatedAt:  time.Now(),
	}

	_, err := h.db.Exec(`
		INSERT INTO app_user (id, name, email, user_type, cluster, batch, bio, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, user.ID, user.Name, user.Email, user.UserType, user.Cluster, user.Batch, user.Bio, user.IsApproved, user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
			return
		}
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign up")
		return
	}

	// Unapproved members get no session; they log in after admin approval.
	if approved {
		if err := auth.SignIn(r.Context(), h.sessions, user); err != nil {
			slog.Error("failed to establish session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign up")
			return
		}
	}

	slog.Info("user signed up", "user_id", user.ID, "user_type", user.UserType, "approved", approved)

	middleware.JSONResponse(w, http.StatusCreated, models.AuthResponse{
		Success: true,
		User:    user,
	})
}

// Login handles POST /api/auth/login
// Login is by email only; identity is then carried by the session cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := scanUser(h.db.QueryRow(`
		SELECT `+userColumns+` FROM app_user WHERE LOWER(email) = $1
	`, email))

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if user.UserType == models.TypeMember && !user.IsApproved {
		middleware.ErrorResponse(w, http.StatusForbidden, "Account pending admin approval")
		return
	}

	if err := auth.SignIn(r.Context(), h.sessions, user); err != nil {
		slog.Error("failed to establish session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.AuthResponse{
		Success: true,
		User:    user,
	})
}

// Verify handles GET /api/auth/verify
// Re-reads the session and the user row; a session whose user is gone is
// destroyed rather than reported as valid.
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context(), h.sessions)
	if userID == "" {
		middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{Success: false})
		return
	}

	user, err := getUser(h.db, userID)
	if err == sql.ErrNoRows {
		if destroyErr := auth.SignOut(r.Context(), h.sessions); destroyErr != nil {
			slog.Error("failed to destroy stale session", "error", destroyErr)
		}
		middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{Success: false})
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var hasPortfolio bool
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM portfolio WHERE user_id = $1)
	`, userID).Scan(&hasPortfolio)
	if err != nil {
		slog.Error("failed to check portfolio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{
		Success:      true,
		User:         &user,
		HasPortfolio: hasPortfolio,
	})
}

// Logout handles POST /api/auth/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(r.Context(), h.sessions); err != nil {
		slog.Error("failed to destroy session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// List handles GET /api/users (admin only)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`SELECT ` + userColumns + ` FROM app_user ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("failed to query users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			slog.Error("failed to scan user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		users = append(users, user)
	}

	middleware.JSONResponse(w, http.StatusOK, models.UserListResponse{Users: users})
}

// Update handles PUT /api/users/:id (self or admin)
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	sessionUserID := auth.UserID(r.Context(), h.sessions)
	if userID != sessionUserID && !isAdmin(h.db, sessionUserID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot edit another user's profile")
		return
	}

	var req models.UpdateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := h.db.Exec(`
		UPDATE app_user SET name = $1, cluster = $2, batch = $3, bio = $4 WHERE id = $5
	`, req.Name, req.Cluster, req.Batch, req.Bio, userID)

	if err != nil {
		slog.Error("failed to update user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := getUser(h.db, userID)
	if err != nil {
		slog.Error("failed to reload user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// Approve handles PATCH /api/users/:id/approve (admin only)
func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	result, err := h.db.Exec(`UPDATE app_user SET is_approved = TRUE WHERE id = $1`, userID)
	if err != nil {
		slog.Error("failed to approve user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to approve user")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	slog.Info("user approved", "user_id", userID)

	user, err := getUser(h.db, userID)
	if err != nil {
		slog.Error("failed to reload user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// SetRole handles PATCH /api/users/:id/role (admin only)
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	var req models.SetRoleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.ValidUserType(req.UserType) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_type must be guest, member, or admin")
		return
	}

	result, err := h.db.Exec(`UPDATE app_user SET user_type = $1 WHERE id = $2`, req.UserType, userID)
	if err != nil {
		slog.Error("failed to set role", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to set role")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	slog.Info("user role changed", "user_id", userID, "user_type", req.UserType)

	user, err := getUser(h.db, userID)
	if err != nil {
		slog.Error("failed to reload user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id (self or admin)
// Deleting an account cascades to the user's portfolio, works, and votes.
// Votes the account cast on other members' works go with it, so the counters
// they contributed are reversed in the same transaction.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	sessionUserID := auth.UserID(r.Context(), h.sessions)
	if userID != sessionUserID && !isAdmin(h.db, sessionUserID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot delete another user's account")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Per-work totals of the user's outgoing votes. Votes on the user's own
	// works vanish with the works, so those are skipped.
	type voteTotal struct {
		workID  string
		ownerID string
		count   int
	}
	rows, err := tx.Query(`
		SELECT v.work_id, w.owner_id, COUNT(*)
		FROM vote v
		JOIN work w ON w.id = v.work_id
		WHERE v.user_id = $1 AND w.owner_id <> $1
		GROUP BY v.work_id, w.owner_id
	`, userID)
	if err != nil {
		slog.Error("failed to query outgoing votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	totals := []voteTotal{}
	for rows.Next() {
		var vt voteTotal
		if err := rows.Scan(&vt.workID, &vt.ownerID, &vt.count); err != nil {
			rows.Close()
			slog.Error("failed to scan outgoing votes", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete account")
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
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete account")
			return
		}
		_, err = tx.Exec(`
			UPDATE portfolio SET total_votes = CASE WHEN total_votes > $1 THEN total_votes - $1 ELSE 0 END
			WHERE user_id = $2
		`, vt.count, vt.ownerID)
		if err != nil {
			slog.Error("failed to reverse portfolio total", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete account")
			return
		}
	}

	result, err := tx.Exec(`DELETE FROM app_user WHERE id = $1`, userID)
	if err != nil {
		slog.Error("failed to delete user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit account deletion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	if userID == sessionUserID {
		if err := auth.SignOut(r.Context(), h.sessions); err != nil {
			slog.Error("failed to destroy session after account deletion", "error", err)
		}
	}

	slog.Info("user deleted", "user_id", userID)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
