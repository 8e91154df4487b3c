// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and login token utilities.

# Passwords

Passwords are stored as bcrypt hashes with a per-hash random salt:

	hash, err := auth.HashPassword(plaintext)
	ok := auth.CheckPassword(plaintext, hash)

Two hashes of the same password never compare equal, and CheckPassword
is the only way to verify a credential.

# Login Tokens

Login tokens are signed JWTs (HS256) carrying the user ID as subject:

	token, err := auth.GenerateToken(userID, secret, ttl)
	userID, err := auth.ParseToken(token, secret)

ParseToken rejects expired tokens, tokens signed with a different secret,
and tokens using any algorithm other than HS256. It returns
ErrInvalidToken wrapped around the underlying cause.

# Email Normalization

Emails are compared case-insensitively throughout the API:

	email := auth.NormalizeEmail("  Alice@Example.COM ")  // "alice@example.com"

Every store and lookup path normalizes first, so uniqueness holds
regardless of how the caller spelled the address.
*/
package auth
