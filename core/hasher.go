package core

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the fixed work factor used for every stored password.
const bcryptCost = 10

// Hasher is the one-way credential hashing contract.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// BcryptHasher implements Hasher with salted adaptive bcrypt. The plaintext
// is pre-digested with SHA-256 before bcrypt, so passwords longer than
// bcrypt's 72-byte input cap hash in full rather than failing or being
// truncated.
type BcryptHasher struct{}

func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{}
}

// prehash folds plaintext of any length into a fixed 44-byte form that stays
// under bcrypt's input cap. Base64 keeps the digest free of NUL bytes.
func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// Hash returns the bcrypt hash of plaintext. Primitive failures surface as
// ErrHashing and are treated as internal errors.
func (BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(prehash(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the stored hash.
func (BcryptHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), prehash(plaintext)) == nil
}
