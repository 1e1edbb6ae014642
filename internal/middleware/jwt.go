package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

// RequireUserJWT validates a bearer token from the Authorization header and
// rejects requests whose token does not belong to the :user_id path owner.
func RequireUserJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if param := c.Param("user_id"); param != "" {
			owner, err := strconv.ParseInt(param, 10, 64)
			if err != nil || owner != claims.UserID {
				response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
				return
			}
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// OptionalUserJWT validates a token when one is present (Authorization header
// or ?token= for WebSocket upgrades) but lets anonymous requests through.
// Handlers use the claims, if any, to personalize the response.
func OptionalUserJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := extractAndValidateClaims(c, authService); err == nil {
			c.Set(ContextKeyClaims, claims)
		}
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractAndValidateClaims(c *gin.Context, authService *service.AuthService) (*service.Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}

	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	return authService.ValidateToken(tokenStr)
}
