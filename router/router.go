// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/laezzii/LenteXhibit/auth"
	"github.com/laezzii/LenteXhibit/cliparse"
	"github.com/laezzii/LenteXhibit/handlers"
	"github.com/laezzii/LenteXhibit/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, sessions *scs.SessionManager) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg, sessions)
	workHandler := handlers.NewWorkHandler(db, cfg, sessions)
	voteHandler := handlers.NewVoteHandler(db, cfg, sessions)
	themeHandler := handlers.NewThemeHandler(db, cfg, sessions)
	portfolioHandler := handlers.NewPortfolioHandler(db, cfg, sessions)
	rankingHandler := handlers.NewRankingHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth
	mux.HandleFunc("POST /api/auth/signup", middleware.WithLogging(userHandler.Signup))
	mux.HandleFunc("POST /api/auth/login", middleware.WithLogging(userHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", middleware.WithLogging(userHandler.Logout))
	mux.HandleFunc("GET /api/auth/verify", middleware.WithLogging(userHandler.Verify))

	// User management
	mux.HandleFunc("GET /api/users", middleware.WithLogging(auth.RequireAdmin(sessions, db, userHandler.List)))
	mux.HandleFunc("PUT /api/users/{id}", middleware.WithLogging(auth.RequireUser(sessions, userHandler.Update)))
	mux.HandleFunc("PATCH /api/users/{id}/approve", middleware.WithLogging(auth.RequireAdmin(sessions, db, userHandler.Approve)))
	mux.HandleFunc("PATCH /api/users/{id}/role", middleware.WithLogging(auth.RequireAdmin(sessions, db, userHandler.SetRole)))
	mux.HandleFunc("DELETE /api/users/{id}", middleware.WithLogging(auth.RequireUser(sessions, userHandler.Delete)))

	// Works (reads are public)
	mux.HandleFunc("GET /api/works", middleware.WithLogging(workHandler.List))
	mux.HandleFunc("GET /api/works/{id}", middleware.WithLogging(workHandler.Get))
	mux.HandleFunc("POST /api/works", middleware.WithLogging(auth.RequireUser(sessions, workHandler.Create)))
	mux.HandleFunc("PUT /api/works/{id}", middleware.WithLogging(auth.RequireUser(sessions, workHandler.Update)))
	mux.HandleFunc("DELETE /api/works/{id}", middleware.WithLogging(auth.RequireUser(sessions, workHandler.Delete)))
	mux.HandleFunc("POST /api/works/{id}/submit", middleware.WithLogging(auth.RequireUser(sessions, workHandler.SubmitToTheme)))
	mux.HandleFunc("PATCH /api/works/{id}/featured", middleware.WithLogging(auth.RequireAdmin(sessions, db, workHandler.ToggleFeatured)))

	// Votes
	mux.HandleFunc("POST /api/votes", middleware.WithLogging(auth.RequireUser(sessions, voteHandler.Create)))
	mux.HandleFunc("DELETE /api/votes/{work_id}", middleware.WithLogging(auth.RequireUser(sessions, voteHandler.Delete)))

	// Themes (reads are public; /active must register alongside /{id})
	mux.HandleFunc("GET /api/themes", middleware.WithLogging(themeHandler.List))
	mux.HandleFunc("GET /api/themes/active", middleware.WithLogging(themeHandler.Active))
	mux.HandleFunc("GET /api/themes/{id}", middleware.WithLogging(themeHandler.Get))
	mux.HandleFunc("POST /api/themes", middleware.WithLogging(auth.RequireAdmin(sessions, db, themeHandler.Create)))
	mux.HandleFunc("PUT /api/themes/{id}", middleware.WithLogging(auth.RequireAdmin(sessions, db, themeHandler.Update)))
	mux.HandleFunc("DELETE /api/themes/{id}", middleware.WithLogging(auth.RequireAdmin(sessions, db, themeHandler.Delete)))

	// Portfolios (reads are public)
	mux.HandleFunc("GET /api/portfolios", middleware.WithLogging(portfolioHandler.List))
	mux.HandleFunc("GET /api/portfolios/{user_id}", middleware.WithLogging(portfolioHandler.GetByUser))
	mux.HandleFunc("POST /api/portfolios", middleware.WithLogging(auth.RequireUser(sessions, portfolioHandler.Create)))
	mux.HandleFunc("PUT /api/portfolios/{user_id}", middleware.WithLogging(auth.RequireUser(sessions, portfolioHandler.Update)))
	mux.HandleFunc("DELETE /api/portfolios/{user_id}", middleware.WithLogging(auth.RequireUser(sessions, portfolioHandler.Delete)))

	// Rankings
	mux.HandleFunc("GET /api/rankings", middleware.WithLogging(rankingHandler.Get))

	// Static frontend
	mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))

	return middleware.CORS(sessions.LoadAndSave(mux))
}
