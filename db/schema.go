// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// Timestamps are always written from Go, so the DDL carries no NOW()
// defaults and runs unchanged on both postgres and sqlite. Vote and role
// rows reference users/cafes without ON DELETE CASCADE: removal is an
// explicit application transaction so the cascade stays visible.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Users. Emails are stored lowercased; lookups are case-insensitive.
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    password TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Roles
CREATE TABLE IF NOT EXISTS user_role (
    user_id TEXT NOT NULL REFERENCES users(id),
    role TEXT NOT NULL CHECK (role IN ('USER', 'ADMIN')),
    PRIMARY KEY (user_id, role)
);

-- Cafes
CREATE TABLE IF NOT EXISTS cafe (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Votes. One row per user per voting day (UTC date), so a user belongs
-- to at most one cafe's vote set at a time and the set resets daily.
CREATE TABLE IF NOT EXISTS vote (
    voting_day TEXT NOT NULL,
    user_id TEXT NOT NULL REFERENCES users(id),
    cafe_id TEXT NOT NULL REFERENCES cafe(id),
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (voting_day, user_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_cafe ON vote(voting_day, cafe_id);
`
