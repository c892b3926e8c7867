package hash

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// Parameters are fixed: changing them breaks verification of stored credentials.
const (
	saltBytes  = 16
	iterations = 10000
	keyLength  = 64
)

func derive(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha512.New)
	return hex.EncodeToString(key)
}

// HashPassword derives a PBKDF2-SHA512 hash with a fresh random salt.
// Both values are returned hex-encoded.
func HashPassword(password string) (string, string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	salt := hex.EncodeToString(raw)

	return derive(password, salt), salt, nil
}

// CheckPassword recomputes the hash with the stored salt and compares in
// constant time.
func CheckPassword(password, storedHash, storedSalt string) bool {
	computed := derive(password, storedSalt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
