// Package auth issues and verifies the signed access tokens presented by
// gateway clients, and hashes account passwords.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "gophchat"

// Claims carries the registered claims plus the display name of the user.
// The user ID travels in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// GenerateToken signs an HS256 access token for userID valid for validityDuration.
func GenerateToken(userID, username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Username: username,
	})

	return token.SignedString(secretKey)
}

// Gate verifies tokens presented at connection time.
type Gate struct {
	secretKey []byte
	parser    *jwt.Parser
}

func NewGate(secretKey []byte) *Gate {
	return &Gate{
		secretKey: secretKey,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

// Authenticate checks signature and expiry of tokenString and returns the
// subject user ID. Failures wrap common.ErrAuth: common.ErrTokenExpired for
// expired tokens, common.ErrInvalidToken for everything else.
func (g *Gate) Authenticate(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := g.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return g.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
