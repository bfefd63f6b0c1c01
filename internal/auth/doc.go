// Package auth provides authentication and authorization for authgate.
//
// # Session Tokens
//
// Clients authenticate with stateless HS256 JWTs carrying {sub, iat, exp}.
// Tokens are signed with the configured secret; validity is determined
// entirely by signature and expiry at verification time, so there is no
// server-side session store and no revocation list. Logout only clears the
// client-held cookie — a token copied elsewhere stays valid until expiry.
// That is a capability boundary of the stateless design, not a bug.
//
//	codec, err := auth.NewJWTCodec(secret)
//	token, err := codec.Issue(userID, time.Hour)
//	subject, err := codec.Verify(token)
//
// # Passwords
//
// Passwords are hashed with bcrypt (self-salting, deliberate work factor).
// Verification never compares plaintexts:
//
//	digest, err := auth.HashPassword(plaintext)
//	ok, err := auth.CheckPassword(plaintext, digest)
//
// # The Gate
//
// Gate.Require(allowed) wraps a handler with the per-request state machine:
//
//	extract token -> verify -> resolve user -> role check -> attach principal
//
// The token is read from the "token" cookie first, falling back to an
// Authorization: Bearer header. The resolved user is looked up fresh on every
// request (no caching) under a bounded deadline, and is attached to the
// request context:
//
//	gate := auth.NewGate(users, codec, logger, 0)
//	mux.Handle("GET /api/users/me", gate.Require(store.Authenticated)(handler))
//	mux.Handle("GET /api/users", gate.Require(store.AdminOnly)(adminHandler))
//
// Handlers read the principal with auth.PrincipalFromContext(r.Context()).
package auth
