package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and verifies the session token handed to the client. The
// token's only claim of substance is the session ID; user data stays on the
// server side of the session store.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec signing with the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Sign produces a signed token referencing the session.
func (c *TokenCodec) Sign(s *Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse validates tokenStr and returns the session ID it references.
func (c *TokenCodec) Parse(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ID == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.ID, nil
}
