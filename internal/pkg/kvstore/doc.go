// Package kvstore provides a flat key/value record store abstraction.
//
// The auth module persists device trust, sessions and pending challenges
// as independent flat records (string fields only, no nested objects).
// This package keeps the domain code independent from the persistence
// technology: the same records work on the in-memory, redis and postgres
// backends.
package kvstore
