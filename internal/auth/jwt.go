// Package auth validates the bearer tokens the identity service issues.
// Token issuance lives elsewhere; this side only needs the shared secret.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kasirhq/kasira/internal/config"
	"go.uber.org/fx"
)

var (
	ErrTokenInvalid = errors.New("token_invalid")
	ErrNoSecret     = errors.New("jwt secret not configured")
)

// Claims carried by an access token. TenantID scopes every request; UserID
// identifies the acting cashier or admin.
type Claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
}

var Module = fx.Module("auth",
	fx.Provide(NewManager),
)

func NewManager(cfg config.Config) *Manager {
	secret := strings.TrimSpace(cfg.AuthJWTSecret)
	if secret == "" {
		return &Manager{}
	}
	return &Manager{secret: []byte(secret)}
}

// NewManagerWithSecret is used by tests and local tooling.
func NewManagerWithSecret(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Generate signs a short-lived access token. Production issuance belongs to
// the identity service; this exists for seeding and tests.
func (m *Manager) Generate(tenantID, userID string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := &Claims{
		TenantID: tenantID,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "kasira",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses and verifies an access token.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || strings.TrimSpace(claims.TenantID) == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
