// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: email, password, name
  - LoginRequest: email, password
  - UpdateProfileRequest: email, name, optional password
  - CreateUserRequest: email, password, name, roles
  - UpdateUserRequest: email, name, roles, optional password
  - CafeRequest: name

# Response Types

Types for JSON responses:

  - LoginResponse: token, user
  - User: account data (password hash is never serialized)
  - Cafe: cafe data plus today's votes_count and the caller's voted flag
  - ErrorResponse: error, message

# Domain Types

  - Principal: the authenticated identity resolved per request (id,
    email, roles). Principal.HasRole answers role checks.

# Constants

Role values:

	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
*/
package models
