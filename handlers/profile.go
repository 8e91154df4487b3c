// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mvoronkov/cafevoter/auth"
	"github.com/mvoronkov/cafevoter/cliparse"
	"github.com/mvoronkov/cafevoter/middleware"
	"github.com/mvoronkov/cafevoter/models"
)

type ProfileHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewProfileHandler(db *sql.DB, cfg cliparse.Config) *ProfileHandler {
	return &ProfileHandler{db: db, cfg: cfg}
}

// Register handles POST /users/register
// The only anonymous write endpoint. New accounts get the USER role.
func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "email is required")
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "password is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	userID := uuid.NewString()
	createdAt := time.Now().UTC()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO users (id, email, name, password, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, email, req.Name, hash, createdAt)

	if isUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO user_role (user_id, role) VALUES ($1, $2)
	`, userID, models.RoleUser)
	if err != nil {
		slog.Error("failed to insert role", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("user registered", "user_id", userID, "email", email)

	middleware.JSONResponse(w, http.StatusCreated, models.User{
		ID:        userID,
		Email:     email,
		Name:      req.Name,
		Roles:     []string{models.RoleUser},
		CreatedAt: createdAt,
	})
}

// Login handles POST /users/login
// Issues a bearer token for clients that prefer not to resend basic
// credentials on every request.
func (h *ProfileHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := getUserByEmail(h.db, auth.NormalizeEmail(req.Email))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Bad credentials")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Bad credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID, h.cfg.TokenSecret, h.cfg.TokenTTL)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token: token,
		User:  user,
	})
}

// Get handles GET /users/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := getUserByID(h.db, principal.ID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// Update handles PUT /users/profile
// Full replace of email and name; password only when supplied. Roles and
// created_at are not touchable here.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "email is required")
		return
	}

	var err error
	if req.Password != "" {
		var hash string
		hash, err = auth.HashPassword(req.Password)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		_, err = h.db.Exec(`
			UPDATE users SET email = $1, name = $2, password = $3 WHERE id = $4
		`, email, req.Name, hash, principal.ID)
	} else {
		_, err = h.db.Exec(`
			UPDATE users SET email = $1, name = $2 WHERE id = $3
		`, email, req.Name, principal.ID)
	}

	if isUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to update user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	slog.Info("profile updated", "user_id", principal.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /users/profile
// Removes the account and every vote it has cast, in one transaction, so
// no cafe vote set keeps a dangling reference.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := deleteUser(h.db, principal.ID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		slog.Error("failed to delete user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	slog.Info("account deleted", "user_id", principal.ID)
	w.WriteHeader(http.StatusNoContent)
}
