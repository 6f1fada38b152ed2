package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/backend-template/internal/httperr"
)

// ContextKeyClaims is the gin context key the verified token claims are
// stored under.
const ContextKeyClaims = "auth_claims"

// RequireAuth returns the authentication gate middleware. It extracts the
// bearer token from the Authorization header, verifies it, and attaches
// the claims to the request context. Requests without a valid token are
// short-circuited into the error taxonomy.
func RequireAuth(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			_ = c.Error(httperr.Unauthorized("Token required"))
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, ErrTokenExpired) {
				message = "Token expired"
			}
			_ = c.Error(httperr.InvalidToken(message).WithCause(err))
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// extractBearerToken pulls the token out of an "Authorization: Bearer <t>"
// header. Returns "" for a missing or malformed header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentClaims returns the verified claims attached by RequireAuth.
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
