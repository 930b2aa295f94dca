// Package session remembers a logged-in account between runs as a signed
// token kept in the local metadata table.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the owner id and email next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
}

// Session is a verified, unexpired token.
type Session struct {
	OwnerID   string
	Email     string
	ExpiresAt time.Time
}

// Issue signs an HS256 token valid for ttl from now.
func Issue(ownerID, email string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		OwnerID: ownerID,
		Email:   email,
	})

	s, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}
	return s, nil
}

// Parse verifies the token at now. Expiry yields common.ErrTokenExpired,
// any other problem common.ErrInvalidToken.
func Parse(tokenString string, secret []byte, now time.Time) (*Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.OwnerID == "" {
		return nil, common.ErrInvalidToken
	}

	return &Session{
		OwnerID:   claims.OwnerID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
