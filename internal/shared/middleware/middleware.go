package middleware

import (
	"net/http"
	"strings"

	"courtly/internal/shared/config"
	"courtly/internal/shared/utils/response"
	"courtly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// JWTAuth creates a JWT authentication middleware
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
				response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
				c.Abort()
				return
			}
			c.Set("user_id", claims["user_id"])
			c.Set("user_email", claims["email"])
			c.Set("user_role", claims["role"])
		}

		c.Next()
	}
}

// CurrentActor extracts the authenticated actor from the gin context.
// Returns false if the request was not authenticated or claims are malformed.
func CurrentActor(c *gin.Context) (users.Actor, bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		return users.Actor{}, false
	}
	idStr, ok := rawID.(string)
	if !ok {
		return users.Actor{}, false
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return users.Actor{}, false
	}

	actor := users.Actor{UserID: userID, Role: users.RolePlayer}
	if email, ok := c.Get("user_email"); ok {
		if s, ok := email.(string); ok {
			actor.Email = s
		}
	}
	if role, ok := c.Get("user_role"); ok {
		if s, ok := role.(string); ok && users.IsValidRole(s) {
			actor.Role = users.Role(s)
		}
	}
	return actor, true
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		if role, ok := userRole.(string); !ok || role != string(requiredRole) {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireManager middleware that requires the manager role
func RequireManager() gin.HandlerFunc {
	return RequireRole(users.RoleManager)
}
