// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is portable across PostgreSQL and SQLite.

# Tables

The schema includes:

  - users: Accounts with unique normalized email and bcrypt password hash
  - user_role: Role assignments (USER, ADMIN), one row per user/role pair
  - cafe: The votable cafes
  - vote: One row per user per voting day

# Relationships

	users 1──* user_role
	users 1──* vote
	cafe  1──* vote

The vote primary key (voting_day, user_id) enforces the one-vote-per-day
rule at the schema level: a user cannot hold votes on two cafes within
the same day. Foreign keys carry no ON DELETE CASCADE; deletions cascade
explicitly inside application transactions so the cleanup order is visible
in code.

# Indexes

	vote.(voting_day, cafe_id) for per-cafe tallies
*/
package db
