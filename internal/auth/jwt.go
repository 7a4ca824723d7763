package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hostelry/service-rooms/internal/domain"
)

// Claims are the access-token claims issued by the accounts service.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the caller identity used by the domain.
func (c *Claims) Identity() domain.Identity {
	return domain.NewIdentity(c.UserID, c.Username)
}

// JWTManager verifies HS256 bearer tokens. Token issuance belongs to the
// accounts service; GenerateAccessToken exists for tests and local tooling.
type JWTManager struct {
	secret         []byte
	issuer         string
	accessTokenTTL time.Duration
}

// NewJWTManager creates a new JWTManager.
func NewJWTManager(secret, issuer string, accessTokenTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:         []byte(secret),
		issuer:         issuer,
		accessTokenTTL: accessTokenTTL,
	}
}

// GenerateAccessToken signs a token for the given identity.
func (m *JWTManager) GenerateAccessToken(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   identity.ID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Every failure is
// reported as domain.ErrUnauthenticated.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.NewUnauthenticatedError("token expired")
		default:
			return nil, domain.NewUnauthenticatedError("invalid token")
		}
	}

	if claims.UserID == uuid.Nil {
		return nil, domain.NewUnauthenticatedError("token carries no user")
	}
	return claims, nil
}
