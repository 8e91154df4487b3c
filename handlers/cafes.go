// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvoronkov/cafevoter/cliparse"
	"github.com/mvoronkov/cafevoter/middleware"
	"github.com/mvoronkov/cafevoter/models"
)

type CafeHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCafeHandler(db *sql.DB, cfg cliparse.Config) *CafeHandler {
	return &CafeHandler{db: db, cfg: cfg}
}

// List handles GET /cafes
// Returns every cafe with its vote count for the current voting day and
// whether the caller is in that set.
func (h *CafeHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	day := votingDay(time.Now())

	rows, err := h.db.Query(`
		SELECT c.id, c.name, c.created_at,
		       COUNT(v.user_id),
		       MAX(CASE WHEN v.user_id = $2 THEN 1 ELSE 0 END)
		FROM cafe c
		LEFT JOIN vote v ON v.cafe_id = c.id AND v.voting_day = $1
		GROUP BY c.id, c.name, c.created_at
		ORDER BY c.name, c.id
	`, day, principal.ID)

	if err != nil {
		slog.Error("failed to query cafes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	cafes := []models.Cafe{}
	for rows.Next() {
		var cafe models.Cafe
		var voted int
		if err := rows.Scan(&cafe.ID, &cafe.Name, &cafe.CreatedAt, &cafe.VotesCount, &voted); err != nil {
			slog.Error("failed to scan cafe", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		cafe.Voted = voted == 1
		cafes = append(cafes, cafe)
	}

	middleware.JSONResponse(w, http.StatusOK, cafes)
}

// Get handles GET /cafes/{id}
func (h *CafeHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cafeID := r.PathValue("id")
	if cafeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "cafe id is required")
		return
	}

	cafe, err := getCafe(h.db, cafeID, votingDay(time.Now()), principal.ID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Cafe not found")
		return
	}
	if err != nil {
		slog.Error("failed to query cafe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, cafe)
}

// Create handles POST /cafes (admin)
// created_at is set server-side; any client-supplied value is ignored.
func (h *CafeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CafeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	cafeID := uuid.NewString()
	createdAt := time.Now().UTC()

	_, err := h.db.Exec(`
		INSERT INTO cafe (id, name, created_at)
		VALUES ($1, $2, $3)
	`, cafeID, req.Name, createdAt)

	if err != nil {
		slog.Error("failed to insert cafe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create cafe")
		return
	}

	slog.Info("cafe created", "cafe_id", cafeID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.Cafe{
		ID:        cafeID,
		Name:      req.Name,
		CreatedAt: createdAt,
	})
}

// Update handles PUT /cafes/{id} (admin)
// Replaces everything except id and created_at.
func (h *CafeHandler) Update(w http.ResponseWriter, r *http.Request) {
	cafeID := r.PathValue("id")
	if cafeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "cafe id is required")
		return
	}

	var req models.CafeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	res, err := h.db.Exec(`
		UPDATE cafe SET name = $1 WHERE id = $2
	`, req.Name, cafeID)

	if err != nil {
		slog.Error("failed to update cafe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update cafe")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read update result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update cafe")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Cafe not found")
		return
	}

	slog.Info("cafe updated", "cafe_id", cafeID)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /cafes/{id} (admin)
// Removes the cafe and its votes in one transaction.
func (h *CafeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cafeID := r.PathValue("id")
	if cafeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "cafe id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM vote WHERE cafe_id = $1`, cafeID)
	if err != nil {
		slog.Error("failed to delete cafe votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete cafe")
		return
	}

	res, err := tx.Exec(`DELETE FROM cafe WHERE id = $1`, cafeID)
	if err != nil {
		slog.Error("failed to delete cafe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete cafe")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read delete result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete cafe")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Cafe not found")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete cafe")
		return
	}

	slog.Info("cafe deleted", "cafe_id", cafeID)
	w.WriteHeader(http.StatusNoContent)
}

// getCafe loads one cafe with its tally for the given voting day and the
// voted flag for userID. Passes through sql.ErrNoRows for missing ids.
func getCafe(db *sql.DB, cafeID, day, userID string) (models.Cafe, error) {
	var cafe models.Cafe
	var voted int

	err := db.QueryRow(`
		SELECT c.id, c.name, c.created_at,
		       COUNT(v.user_id),
		       MAX(CASE WHEN v.user_id = $3 THEN 1 ELSE 0 END)
		FROM cafe c
		LEFT JOIN vote v ON v.cafe_id = c.id AND v.voting_day = $2
		WHERE c.id = $1
		GROUP BY c.id, c.name, c.created_at
	`, cafeID, day, userID).Scan(&cafe.ID, &cafe.Name, &cafe.CreatedAt, &cafe.VotesCount, &voted)

	if err != nil {
		return models.Cafe{}, err
	}

	cafe.Voted = voted == 1
	return cafe, nil
}
