package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the password peppered with secret.
func HashPassword(password, secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(pepper(password, secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hashedPassword, password, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), pepper(password, secret)) == nil
}

// pepper binds the password to the server secret. The MAC keeps the bcrypt
// input at 44 bytes, under bcrypt's 72 byte limit, whatever the secret length.
func pepper(password, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(password))
	sum := mac.Sum(nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}
