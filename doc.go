// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the cafevoter API server.

Cafevoter is a daily cafe voting service: every registered user can back
exactly one cafe per day, toggle the vote off, or switch it to another
cafe. Admins manage the cafe list and the user accounts.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... TOKEN_SECRET=... go run main.go

Or with flags:

	go run main.go -p 8080 -d "postgres://..." -token-secret "..."

A .env file in the working directory is loaded automatically if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string
  - TOKEN_SECRET (-token-secret): HMAC secret for login tokens

Optional settings:

  - PORT (-p): server port (default: 8080)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"
  - TOKEN_TTL_MINUTES (-token-ttl): token lifetime (default: 720)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (cafes, votes, profile, admin users)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Authentication gate, CORS, logging, JSON helpers
  - models: Request/response types and the request principal
  - auth: Password hashing and login token utilities
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
