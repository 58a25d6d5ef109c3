// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session tokens and identifier generation.

# Session Tokens

Sessions are HS256 JWTs whose subject is the user ID:

	token, err := auth.IssueSessionToken(userID, secret, 24*time.Hour)
	userID, err := auth.ParseSessionToken(token, secret)

Tokens must carry an expiry and the quickly-frame issuer. Anything else
(wrong algorithm, wrong key, expired) fails with ErrInvalidToken. The HTTP
layer treats a failed parse exactly like a missing token: the request simply
has no session.

# Frame IDs

Frame records are keyed by random UUIDs:

	id := auth.NewFrameID()
*/
package auth
