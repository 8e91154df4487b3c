// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/mvoronkov/cafevoter/cliparse"
	"github.com/mvoronkov/cafevoter/middleware"
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

// Toggle handles GET /cafes/{id}/vote
//
// Flips the caller's vote for the cafe within the current voting day:
// no vote yet casts one, a vote for this cafe retracts it, and a vote for
// another cafe moves to this one - retract and cast in the same
// transaction, so a user is never in two vote sets at once.
//
// The cafe row is locked for the duration of the transaction (postgres),
// which both checks existence and serializes concurrent toggles on the
// same cafe. Toggles on different cafes do not block each other. The
// sqlite path relies on the single-writer transaction model instead.
func (h *VoteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
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

	now := time.Now()
	day := votingDay(now)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	lock := ""
	if h.cfg.DatabaseType == cliparse.TypePostgres {
		lock = " FOR UPDATE"
	}

	var lockedID string
	err = tx.QueryRow(`SELECT id FROM cafe WHERE id = $1`+lock, cafeID).Scan(&lockedID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Cafe not found")
		return
	}
	if err != nil {
		slog.Error("failed to query cafe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var currentCafeID string
	err = tx.QueryRow(`
		SELECT cafe_id FROM vote WHERE voting_day = $1 AND user_id = $2
	`, day, principal.ID).Scan(&currentCafeID)

	var action string
	switch {
	case err == sql.ErrNoRows:
		action = "cast"
		_, err = tx.Exec(`
			INSERT INTO vote (voting_day, user_id, cafe_id, voted_at)
			VALUES ($1, $2, $3, $4)
		`, day, principal.ID, cafeID, now.UTC())
		if isUniqueViolation(err) {
			// Lost the race against a toggle on another cafe by the same user.
			middleware.ErrorResponse(w, http.StatusConflict, "Concurrent vote, retry")
			return
		}

	case err == nil && currentCafeID == cafeID:
		action = "retracted"
		_, err = tx.Exec(`
			DELETE FROM vote WHERE voting_day = $1 AND user_id = $2
		`, day, principal.ID)

	case err == nil:
		action = "switched"
		_, err = tx.Exec(`
			UPDATE vote SET cafe_id = $3, voted_at = $4
			WHERE voting_day = $1 AND user_id = $2
		`, day, principal.ID, cafeID, now.UTC())

	default:
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err != nil {
		slog.Error("failed to toggle vote", "error", err, "cafe_id", cafeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle vote")
		return
	}

	slog.Info("vote toggled", "cafe_id", cafeID, "user_id", principal.ID, "action", action)

	cafe, err := getCafe(h.db, cafeID, day, principal.ID)
	if err != nil {
		slog.Error("failed to reload cafe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, cafe)
}

// votingDay is the UTC calendar date a vote counts toward. Votes reset at
// UTC midnight.
func votingDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
