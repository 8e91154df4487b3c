// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the cafevoter API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Account (anonymous):

	POST /users/register - Create an account
	POST /users/login    - Exchange credentials for a token

Profile (authenticated):

	GET    /users/profile - Own account
	PUT    /users/profile - Update own account
	DELETE /users/profile - Delete own account and votes

Cafes (authenticated; writes require ADMIN):

	GET    /cafes           - List with today's tallies
	GET    /cafes/{id}      - Single cafe
	GET    /cafes/{id}/vote - Toggle today's vote
	POST   /cafes           - Create cafe
	PUT    /cafes/{id}      - Rename cafe
	DELETE /cafes/{id}      - Delete cafe and its votes

Admin (requires ADMIN role; /admin/cafes mirrors /cafes writes):

	GET    /admin/users          - List users with roles
	POST   /admin/users          - Create user
	GET    /admin/users/by-email - Lookup by email
	GET    /admin/users/{id}     - Single user
	PUT    /admin/users/{id}     - Replace user data and roles
	DELETE /admin/users/{id}     - Delete user, roles, and votes

# Handler Initialization

The router creates handler instances with dependency injection:

	cafeHandler := handlers.NewCafeHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db, cfg)
	adminUserHandler := handlers.NewAdminUserHandler(db, cfg)

All handlers receive the database connection and configuration. Every
route except health, root, register, and login passes through the
authentication gate.
*/
package router
