package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/santiyer/core/internal/modules/auth"
	"github.com/santiyer/core/internal/pkg/jwt"
	"github.com/santiyer/core/internal/pkg/response"
)

// Admin returns the middleware protecting every mutating route: the JWT must
// parse, its session must still be active, and the identity must pass the
// admin guard. A guard denial has already revoked the session by the time
// the 403 goes out.
func Admin(svc *auth.Service, guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}

		active, err := svc.SessionActive(c.Request.Context(), claims.SessionID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if !active {
			response.Unauthorized(c)
			return
		}

		identity := auth.Identity{
			UserID:    claims.UserID,
			Email:     claims.Email,
			SessionID: claims.SessionID,
		}
		if err := guard.Authorize(c.Request.Context(), identity); err != nil {
			response.Forbidden(c)
			return
		}

		auth.SetIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth marks the request authenticated when a valid token is
// present, without blocking anything. The rate limiter and HTTP cache key
// off it.
func OptionalAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := jwt.Parse(extractToken(c)); err == nil {
			if active, err := svc.SessionActive(c.Request.Context(), claims.SessionID); err == nil && active {
				auth.SetIdentity(c, auth.Identity{
					UserID:    claims.UserID,
					Email:     claims.Email,
					SessionID: claims.SessionID,
				})
			}
		}
		c.Next()
	}
}

// IsAuthenticated reports whether the request carries a validated identity.
func IsAuthenticated(c *gin.Context) bool {
	return auth.IdentityFromContext(c).UserID != ""
}

func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return NormalizeToken(h)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
