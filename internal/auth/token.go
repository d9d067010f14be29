// Package auth issues and verifies access tokens and registers app users
// against the core-banking client registry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/domain"
)

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = time.Hour

// Claims are the access token claims. Subject is the user id and ID is the
// token id used for revocation.
type Claims struct {
	ClientCode string `json:"client_code"`
	jwt.RegisteredClaims
}

// UserID returns the subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret    []byte
	ttl       time.Duration
	blocklist appdata.TokenBlocklist
	now       func() time.Time
}

// NewTokenManager creates a token manager. blocklist may be nil, in which
// case tokens cannot be revoked.
func NewTokenManager(secret string, ttl time.Duration, blocklist appdata.TokenBlocklist) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret:    []byte(secret),
		ttl:       ttl,
		blocklist: blocklist,
		now:       time.Now,
	}
}

// Issue signs a new token for the user.
func (m *TokenManager) Issue(userID, clientCode string) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		ClientCode: clientCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("Issue: sign: %w", err)
	}
	return token, claims, nil
}

// Parse verifies signature, expiry and revocation of a token.
func (m *TokenManager) Parse(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("Parse: %w: token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("Parse: %w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("Parse: %w: token is missing subject or id", domain.ErrUnauthorized)
	}

	if m.blocklist != nil {
		revoked, err := m.blocklist.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("Parse: check blocklist: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("Parse: %w: token revoked", domain.ErrUnauthorized)
		}
	}
	return claims, nil
}

// Revoke adds the token id to the blocklist until the token would expire.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.blocklist == nil {
		return errors.New("Revoke: no token blocklist configured")
	}
	expiresAt := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := m.blocklist.RevokeToken(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}
	return nil
}

type claimsKey struct{}

// WithClaims returns a context carrying the verified claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
