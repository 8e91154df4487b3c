// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/mvoronkov/cafevoter/cliparse"
	"github.com/mvoronkov/cafevoter/handlers"
	"github.com/mvoronkov/cafevoter/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	gate := middleware.NewGate(db, cfg)
	cafeHandler := handlers.NewCafeHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db, cfg)
	userHandler := handlers.NewAdminUserHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Account self-service (register and login are the only anonymous endpoints)
	mux.HandleFunc("POST /users/register", middleware.WithLogging(profileHandler.Register))
	mux.HandleFunc("POST /users/login", middleware.WithLogging(profileHandler.Login))
	mux.HandleFunc("GET /users/profile", middleware.WithLogging(gate.RequireUser(profileHandler.Get)))
	mux.HandleFunc("PUT /users/profile", middleware.WithLogging(gate.RequireUser(profileHandler.Update)))
	mux.HandleFunc("DELETE /users/profile", middleware.WithLogging(gate.RequireUser(profileHandler.Delete)))

	// Cafes (reads and voting for any authenticated user, writes for admins)
	mux.HandleFunc("GET /cafes", middleware.WithLogging(gate.RequireUser(cafeHandler.List)))
	mux.HandleFunc("GET /cafes/{id}", middleware.WithLogging(gate.RequireUser(cafeHandler.Get)))
	mux.HandleFunc("GET /cafes/{id}/vote", middleware.WithLogging(gate.RequireUser(voteHandler.Toggle)))
	mux.HandleFunc("POST /cafes", middleware.WithLogging(gate.RequireAdmin(cafeHandler.Create)))
	mux.HandleFunc("PUT /cafes/{id}", middleware.WithLogging(gate.RequireAdmin(cafeHandler.Update)))
	mux.HandleFunc("DELETE /cafes/{id}", middleware.WithLogging(gate.RequireAdmin(cafeHandler.Delete)))

	// Admin cafe catalog (same handlers, admin prefix)
	mux.HandleFunc("GET /admin/cafes", middleware.WithLogging(gate.RequireAdmin(cafeHandler.List)))
	mux.HandleFunc("GET /admin/cafes/{id}", middleware.WithLogging(gate.RequireAdmin(cafeHandler.Get)))
	mux.HandleFunc("POST /admin/cafes", middleware.WithLogging(gate.RequireAdmin(cafeHandler.Create)))
	mux.HandleFunc("PUT /admin/cafes/{id}", middleware.WithLogging(gate.RequireAdmin(cafeHandler.Update)))
	mux.HandleFunc("DELETE /admin/cafes/{id}", middleware.WithLogging(gate.RequireAdmin(cafeHandler.Delete)))

	// Admin user catalog
	mux.HandleFunc("GET /admin/users", middleware.WithLogging(gate.RequireAdmin(userHandler.List)))
	mux.HandleFunc("POST /admin/users", middleware.WithLogging(gate.RequireAdmin(userHandler.Create)))
	mux.HandleFunc("GET /admin/users/by-email", middleware.WithLogging(gate.RequireAdmin(userHandler.GetByEmail)))
	mux.HandleFunc("GET /admin/users/{id}", middleware.WithLogging(gate.RequireAdmin(userHandler.Get)))
	mux.HandleFunc("PUT /admin/users/{id}", middleware.WithLogging(gate.RequireAdmin(userHandler.Update)))
	mux.HandleFunc("DELETE /admin/users/{id}", middleware.WithLogging(gate.RequireAdmin(userHandler.Delete)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cafevoter API v1"))
	})

	return mux
}
