package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hostelry/service-rooms/internal/auth"
	"github.com/hostelry/service-rooms/internal/domain"
	"github.com/hostelry/service-rooms/internal/response"
)

const identityKey = "identity"

// TokenVerifier turns a raw bearer token into verified claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid token and stores the caller
// identity in the gin context. Both "Bearer <token>" and "Token <token>"
// authorization schemes are accepted.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "authentication credentials were not provided")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Next()
	}
}

// GetIdentity returns the verified caller identity set by AuthMiddleware.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	if !ok || identity.IsZero() {
		return domain.Identity{}, false
	}
	return identity, true
}

func extractToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
