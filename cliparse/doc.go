// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: server listen port (default: 8080)
  - DatabaseURL: database connection string (required)
  - DatabaseType: "postgres" or "sqlite" (default: postgres)
  - TokenSecret: HMAC secret for login tokens (required)
  - TokenTTL: login token lifetime (default: 12h)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-token-secret Token signing secret
	-token-ttl    Token TTL in minutes

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	TOKEN_SECRET      → -token-secret
	TOKEN_TTL_MINUTES → -token-ttl

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - TOKEN_SECRET must be provided
  - DATABASE_TYPE must be "postgres" or "sqlite"

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(db, cfg)
*/
package cliparse
