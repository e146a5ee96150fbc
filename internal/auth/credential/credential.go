// Package credential checks login credentials against the single
// configured account. The application serves one shared account; there
// is no user directory.
package credential

import (
	"crypto/subtle"

	"github.com/krishg/billgate/internal/pkg/hash"
)

// Config holds the static credential.
type Config struct {
	// Username is the expected account name.
	Username string
	// Password is the expected secret, either plaintext or a bcrypt hash
	// depending on PasswordIsBcrypt.
	Password string
	// PasswordIsBcrypt marks Password as a bcrypt hash.
	PasswordIsBcrypt bool
}

// Validator compares submitted credentials with the configured ones.
type Validator struct {
	cfg    Config
	hasher hash.Hash
}

// New creates a Validator for the given credential.
func New(cfg Config) *Validator {
	// The hasher only verifies here, so the cost parameter is unused.
	return &Validator{cfg: cfg, hasher: hash.NewBcrypt(0, "")}
}

// Validate reports whether the pair matches the configured credential.
// It is pure and never fails on malformed input; empty strings simply do
// not match. Comparison is constant-time.
func (v *Validator) Validate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.cfg.Username)) == 1

	var passOK bool
	if v.cfg.PasswordIsBcrypt {
		passOK = v.hasher.Verify(v.cfg.Password, password)
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(v.cfg.Password)) == 1
	}

	return userOK && passOK
}
