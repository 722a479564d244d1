package middleware

import (
	"strings"

	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware validates the access token and puts the resulting Actor
// into the request context.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// 2. Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}
		token := parts[1]

		// 3. Verify and parse claims
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// 4. Convert subject to uuid.UUID
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid user ID in token"})
			c.Abort()
			return
		}

		// 5. Set actor into context
		c.Set("actor", shared.Actor{
			ID:    userID,
			Email: claims.Email,
			Admin: claims.IsAdmin,
		})
		c.Set("userID", userID)

		c.Next()
	}
}

// OptionalAuth sets the actor when a valid token is present but lets
// anonymous requests through. Used on read endpoints where authors may
// see their own drafts.
func OptionalAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set("actor", shared.Actor{
			ID:    userID,
			Email: claims.Email,
			Admin: claims.IsAdmin,
		})
		c.Set("userID", userID)

		c.Next()
	}
}

// GetActor reads the Actor placed by AuthMiddleware. Returns false when
// the route is not behind auth.
func GetActor(c *gin.Context) (shared.Actor, bool) {
	value, exists := c.Get("actor")
	if !exists {
		return shared.Actor{}, false
	}

	actor, ok := value.(shared.Actor)
	return actor, ok
}
