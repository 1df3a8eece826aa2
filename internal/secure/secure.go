// Package secure holds the credential utilities: password digests and
// random one-time codes.
package secure

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// codeAlphabet intentionally has no lowercase letters so codes survive
// being read aloud or typed case-insensitively.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

// HashPassword derives a bcrypt digest from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches digest. Blank inputs
// never match.
func VerifyPassword(digest, password string) bool {
	if digest == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// RandomCode returns a cryptographically random uppercase-alphanumeric
// string of the given length.
func RandomCode(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
