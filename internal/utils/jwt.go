package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenSubject is returned for a well-signed token without a user id.
var ErrTokenSubject = errors.New("token carries no user id")

type tokenClaims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithExpirationRequired(),
	jwt.WithIssuedAt(),
)

// GenerateToken signs an HS256 token carrying userID as both "id" and "sub",
// expiring ttl from now.
func GenerateToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	issued := time.Now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies signature, algorithm and expiry and returns the user id.
func ParseToken(secret, raw string) (uuid.UUID, error) {
	var claims tokenClaims
	_, err := tokenParser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	if claims.UserID == uuid.Nil {
		return uuid.Nil, ErrTokenSubject
	}
	return claims.UserID, nil
}
