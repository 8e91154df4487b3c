// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Authentication Gate

The Gate resolves request credentials into a principal and guards routes:

	gate := middleware.NewGate(db, cfg)
	mux.HandleFunc("GET /cafes", middleware.WithLogging(gate.RequireUser(handler)))
	mux.HandleFunc("POST /cafes", middleware.WithLogging(gate.RequireAdmin(handler)))

Two credential forms are accepted: HTTP Basic (email and password) and
Bearer login tokens. RequireUser answers 401 with a WWW-Authenticate
challenge when credentials are absent or wrong; RequireAdmin additionally
answers 403 when the principal lacks the ADMIN role.

Handlers read the resolved principal from the request context:

	principal, ok := middleware.PrincipalFrom(r)

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type and Authorization.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CafeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
