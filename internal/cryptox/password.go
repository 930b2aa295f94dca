// Package cryptox holds the project's cryptographic primitives: password
// hashing for accounts, one-time reset codes, and sealing of archived
// snapshots.
package cryptox

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	PasswordIterations = 100_000
	PasswordKeySize    = 32
	PasswordSaltSize   = 16
)

// PasswordHasher derives PBKDF2-HMAC-SHA512 keys. Hash and salt travel as
// standard base64 strings, which is how the accounts table stores them.
type PasswordHasher struct{}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

// Hash returns the derived key and a freshly generated salt.
func (h *PasswordHasher) Hash(password string) (hash string, salt string) {
	s := common.GenerateRandByteArray(PasswordSaltSize)
	return h.hashWithSalt(password, s), base64.StdEncoding.EncodeToString(s)
}

// Verify recomputes the key with the stored salt and compares in constant
// time. Undecodable stored values never verify.
func (h *PasswordHasher) Verify(password, hash, salt string) bool {
	s, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), s, PasswordIterations, PasswordKeySize, sha512.New)
	return subtle.ConstantTimeCompare(want, got) == 1
}

func (h *PasswordHasher) hashWithSalt(password string, salt []byte) string {
	key := pbkdf2.Key([]byte(password), salt, PasswordIterations, PasswordKeySize, sha512.New)
	return base64.StdEncoding.EncodeToString(key)
}
