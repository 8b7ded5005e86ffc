// Package cryptox implements password credential handling for the
// server: a random per-user salt plus an Argon2id verifier derived from
// the password. Only the salt and verifier are stored; the password
// itself never touches the database.
package cryptox

import (
	"crypto/subtle"

	"github.com/MMaus/listkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 32

// Argon2id parameters. Changing them invalidates stored verifiers, so a
// migration would have to re-derive on next login.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// NewSalt returns a fresh random salt for a new user.
func NewSalt() []byte {
	return common.GenerateRandByteArray(saltSize)
}

// MakeVerifier derives the stored verifier for a password and salt.
func MakeVerifier(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// CheckPassword re-derives the verifier from a password candidate and
// compares it against the stored one in constant time.
func CheckPassword(password, salt, verifier []byte) bool {
	candidate := MakeVerifier(password, salt)
	return subtle.ConstantTimeCompare(candidate, verifier) == 1
}
