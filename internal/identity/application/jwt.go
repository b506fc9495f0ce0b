// Package application hosts identity use cases: verifying a user-facing
// bearer token against the owning account's configured public key and
// extracting the caller's user id and granted permissions.
package application

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/policy"
)

// Claims is the expected shape of a nitro-scheduler user JWT: a standard
// registered-claims envelope plus the application-specific user id and
// granted permission list.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string              `json:"user_id"`
	Permissions []policy.Permission `json:"permissions"`
}

// VerifiedToken is the result of successfully verifying a bearer token.
type VerifiedToken struct {
	UserID uuid.UUID
	Policy policy.Policy
}

// VerifyToken parses and verifies tokenString against publicKey (the
// account's configured RSA public key), requiring RS256 and a well-formed
// user_id claim.
func VerifyToken(tokenString string, publicKey *rsa.PublicKey) (*VerifiedToken, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("identity: unexpected signing method %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("identity: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("identity: token failed validation")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("identity: invalid user_id claim: %w", err)
	}

	return &VerifiedToken{UserID: userID, Policy: policy.New(claims.Permissions)}, nil
}
