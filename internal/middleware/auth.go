package middleware

import (
	"net/http"
	"strings"

	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticate requires "Authorization: Bearer <token>". A missing token is
// 401, a bad, expired or revoked one is 403. When the revocation store
// cannot be reached the token is accepted and the failure logged.
func Authenticate(tokens *auth.TokenManager, revocations *auth.RevocationStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token required"})
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid or expired token"})
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.WithError(err).WithField("user_id", claims.UserID).Warn("Token revocation check failed")
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(principalKey, auth.PrincipalFromClaims(claims))
		c.Next()
	}
}

// PrincipalFrom returns the caller stored by Authenticate.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
