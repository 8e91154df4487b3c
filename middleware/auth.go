// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mvoronkov/cafevoter/auth"
	"github.com/mvoronkov/cafevoter/cliparse"
	"github.com/mvoronkov/cafevoter/models"
)

type ctxKey int

const principalKey ctxKey = 0

var errBadCredentials = errors.New("bad credentials")

// Gate resolves request credentials to a principal and enforces roles.
// Credentials are either HTTP Basic (email + password) or a bearer login
// token; every request re-authenticates.
type Gate struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewGate(db *sql.DB, cfg cliparse.Config) *Gate {
	return &Gate{db: db, cfg: cfg}
}

// RequireUser authenticates the request and attaches the principal to the
// request context before calling the handler. Responds 401 on failure.
func (g *Gate) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.resolve(r)
		if err != nil {
			if !errors.Is(err, errBadCredentials) {
				slog.Error("failed to resolve principal", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "Database error")
				return
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="cafevoter"`)
			ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	}
}

// RequireAdmin authenticates like RequireUser and additionally requires
// the ADMIN role. Responds 403 for authenticated non-admins.
func (g *Gate) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return g.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFrom(r)
		if !principal.HasRole(models.RoleAdmin) {
			ErrorResponse(w, http.StatusForbidden, "Admin role required")
			return
		}
		next(w, r)
	})
}

// resolve authenticates the presented credential. Bearer tokens are tried
// first, then basic auth. Unknown users and wrong passwords both come back
// as errBadCredentials.
func (g *Gate) resolve(r *http.Request) (models.Principal, error) {
	header := r.Header.Get("Authorization")

	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		userID, err := auth.ParseToken(token, g.cfg.TokenSecret)
		if err != nil {
			return models.Principal{}, errBadCredentials
		}
		return g.principalByID(userID)
	}

	email, password, ok := r.BasicAuth()
	if !ok {
		return models.Principal{}, errBadCredentials
	}
	return g.principalByPassword(auth.NormalizeEmail(email), password)
}

func (g *Gate) principalByID(userID string) (models.Principal, error) {
	var p models.Principal
	err := g.db.QueryRow(`
		SELECT id, email FROM users WHERE id = $1
	`, userID).Scan(&p.ID, &p.Email)

	if err == sql.ErrNoRows {
		return models.Principal{}, errBadCredentials
	}
	if err != nil {
		return models.Principal{}, err
	}

	return g.withRoles(p)
}

func (g *Gate) principalByPassword(email, password string) (models.Principal, error) {
	var p models.Principal
	var hash string
	err := g.db.QueryRow(`
		SELECT id, email, password FROM users WHERE email = $1
	`, email).Scan(&p.ID, &p.Email, &hash)

	if err == sql.ErrNoRows {
		return models.Principal{}, errBadCredentials
	}
	if err != nil {
		return models.Principal{}, err
	}

	if !auth.CheckPassword(password, hash) {
		return models.Principal{}, errBadCredentials
	}

	return g.withRoles(p)
}

func (g *Gate) withRoles(p models.Principal) (models.Principal, error) {
	rows, err := g.db.Query(`
		SELECT role FROM user_role WHERE user_id = $1 ORDER BY role
	`, p.ID)
	if err != nil {
		return models.Principal{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return models.Principal{}, err
		}
		p.Roles = append(p.Roles, role)
	}

	return p, rows.Err()
}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal attached by RequireUser.
func PrincipalFrom(r *http.Request) (models.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(models.Principal)
	return p, ok
}
