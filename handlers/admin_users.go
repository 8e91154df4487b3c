// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mvoronkov/cafevoter/auth"
	"github.com/mvoronkov/cafevoter/cliparse"
	"github.com/mvoronkov/cafevoter/middleware"
	"github.com/mvoronkov/cafevoter/models"
)

type AdminUserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminUserHandler(db *sql.DB, cfg cliparse.Config) *AdminUserHandler {
	return &AdminUserHandler{db: db, cfg: cfg}
}

// List handles GET /admin/users
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, email, name, created_at FROM users ORDER BY email
	`)
	if err != nil {
		slog.Error("failed to query users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt); err != nil {
			slog.Error("failed to scan user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		users = append(users, user)
	}

	roles, err := allRoles(h.db)
	if err != nil {
		slog.Error("failed to query roles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	for i := range users {
		users[i].Roles = roles[users[i].ID]
	}

	middleware.JSONResponse(w, http.StatusOK, users)
}

// Create handles POST /admin/users
// Like registration, but the admin may assign roles; defaults to USER.
func (h *AdminUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
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

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}
	for _, role := range roles {
		if !validRole(role) {
			middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "invalid role: "+role)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
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
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	for _, role := range roles {
		if _, err := tx.Exec(`
			INSERT INTO user_role (user_id, role) VALUES ($1, $2)
		`, userID, role); err != nil {
			slog.Error("failed to insert role", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	slog.Info("user created", "user_id", userID, "email", email, "roles", roles)

	middleware.JSONResponse(w, http.StatusCreated, models.User{
		ID:        userID,
		Email:     email,
		Name:      req.Name,
		Roles:     roles,
		CreatedAt: createdAt,
	})
}

// Get handles GET /admin/users/{id}
func (h *AdminUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	user, err := getUserByID(h.db, userID)
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

// GetByEmail handles GET /admin/users/by-email?email=...
// Lookup is case-insensitive.
func (h *AdminUserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := auth.NormalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "email is required")
		return
	}

	user, err := getUserByEmail(h.db, email)
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

// Update handles PUT /admin/users/{id}
// Full replace of email, name and roles; password only when supplied; id
// and created_at preserved.
func (h *AdminUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	var req models.UpdateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "email is required")
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}
	for _, role := range roles {
		if !validRole(role) {
			middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "invalid role: "+role)
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

	var res sql.Result
	if req.Password != "" {
		var hash string
		hash, err = auth.HashPassword(req.Password)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
		res, err = tx.Exec(`
			UPDATE users SET email = $1, name = $2, password = $3 WHERE id = $4
		`, email, req.Name, hash, userID)
	} else {
		res, err = tx.Exec(`
			UPDATE users SET email = $1, name = $2 WHERE id = $3
		`, email, req.Name, userID)
	}

	if isUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to update user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read update result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	if _, err := tx.Exec(`DELETE FROM user_role WHERE user_id = $1`, userID); err != nil {
		slog.Error("failed to clear roles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	for _, role := range roles {
		if _, err := tx.Exec(`
			INSERT INTO user_role (user_id, role) VALUES ($1, $2)
		`, userID, role); err != nil {
			slog.Error("failed to insert role", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	slog.Info("user updated", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /admin/users/{id}
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := deleteUser(h.db, userID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		slog.Error("failed to delete user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	slog.Info("user deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// deleteUser removes a user together with their votes and roles in one
// transaction. Either the user row and all vote memberships go, or
// nothing does. Returns sql.ErrNoRows for an unknown id.
func deleteUser(db *sql.DB, userID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM vote WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM user_role WHERE user_id = $1`, userID); err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// getUserByID loads a user with roles. Passes through sql.ErrNoRows.
func getUserByID(db *sql.DB, userID string) (models.User, error) {
	return getUser(db, `
		SELECT id, email, name, password, created_at FROM users WHERE id = $1
	`, userID)
}

// getUserByEmail loads a user with roles by normalized email.
func getUserByEmail(db *sql.DB, email string) (models.User, error) {
	return getUser(db, `
		SELECT id, email, name, password, created_at FROM users WHERE email = $1
	`, email)
}

func getUser(db *sql.DB, query, arg string) (models.User, error) {
	var user models.User
	err := db.QueryRow(query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.Password, &user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	rows, err := db.Query(`
		SELECT role FROM user_role WHERE user_id = $1 ORDER BY role
	`, user.ID)
	if err != nil {
		return models.User{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return models.User{}, err
		}
		user.Roles = append(user.Roles, role)
	}

	return user, rows.Err()
}

// allRoles returns every user's role set keyed by user id.
func allRoles(db *sql.DB) (map[string][]string, error) {
	rows, err := db.Query(`SELECT user_id, role FROM user_role ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make(map[string][]string)
	for rows.Next() {
		var userID, role string
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, err
		}
		roles[userID] = append(roles[userID], role)
	}

	return roles, rows.Err()
}

func validRole(role string) bool {
	switch role {
	case models.RoleUser, models.RoleAdmin:
		return true
	}
	return false
}

// isUniqueViolation detects duplicate-key errors from either driver:
// a typed error code on postgres, a message match on sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
