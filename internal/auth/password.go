package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 64
	saltBytes        = 16
)

// PasswordHash is the stored form of a page owner password. Both fields are
// hex strings; the salt's hex text itself is the PBKDF2 salt input, which keeps
// hashes written by earlier deployments verifiable.
type PasswordHash struct {
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

// HashPassword derives a PBKDF2-SHA512 hash with a fresh random salt.
func HashPassword(password string) (PasswordHash, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return PasswordHash{}, err
	}
	salt := hex.EncodeToString(raw)
	return PasswordHash{Hash: derive(password, salt), Salt: salt}, nil
}

// VerifyPassword recomputes the hash for password and compares in constant
// time.
func VerifyPassword(password string, stored PasswordHash) bool {
	if stored.Hash == "" || stored.Salt == "" {
		return false
	}
	return secureCompare(stored.Hash, derive(password, stored.Salt))
}

func derive(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return hex.EncodeToString(key)
}
