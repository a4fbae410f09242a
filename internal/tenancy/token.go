package tenancy

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token handed over by the login flow.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email,omitempty"`
}

// IssueToken signs a session token for c with HS256.
func IssueToken(c Context, secretKey []byte, validity time.Duration) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID:   c.UserID,
		TenantID: c.TenantID,
		Email:    c.Email,
	})
	return token.SignedString(secretKey)
}

// ParseToken verifies an HS256 session token and returns its Context.
func ParseToken(tokenString string, secretKey []byte) (Context, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Context{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return Context{}, common.ErrInvalidToken
	}

	c := New(claims.UserID, claims.TenantID, claims.Email)
	if err := c.Validate(); err != nil {
		return Context{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	return c, nil
}
