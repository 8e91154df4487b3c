// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the cafevoter API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - CafeHandler: Cafe listing and CRUD
  - VoteHandler: The daily vote toggle
  - ProfileHandler: Registration, login, and self-service profile
  - AdminUserHandler: User administration

Handlers are created via constructor functions that accept *sql.DB and Config:

	cafeHandler := handlers.NewCafeHandler(db, cfg)

Handlers assume the router's authentication gate has already resolved the
request principal; they read it back with middleware.PrincipalFrom.

# Vote Toggle

Voting is a single idempotent-feeling toggle on a cafe:

	GET /cafes/{id}/vote

Repeating the call retracts the vote; calling it on a different cafe
moves the vote there. The handler runs the whole decision inside one
transaction, locking the cafe row (PostgreSQL) so concurrent toggles
serialize per cafe. Votes are keyed by UTC calendar day, so yesterday's
vote never blocks or counts toward today.

# Cafe Listings

Cafe responses carry today's tally and whether the requesting user's
current vote sits on that cafe:

	[{"id": ..., "name": ..., "votes_count": 3, "voted": true}, ...]

# Admin Operations

Cafe CRUD and all of /admin/* require the ADMIN role. User updates
replace the role set wholesale; user deletion removes votes and roles in
the same transaction.
*/
package handlers
