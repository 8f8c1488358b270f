package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// userIDContextKey is where the authenticated user ID lives in the gin context
const userIDContextKey = "userID"

// AuthMiddleware validates the Bearer token and stores the subject claim
// as the authenticated user ID. Requests without a valid token never
// reach the handlers.
func AuthMiddleware(jwtSecret string, log *logger.Logger) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Warn("Rejected invalid token from %s: %v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			log.Warn("Token from %s carries no subject claim", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token carries no subject"})
			return
		}

		c.Set(userIDContextKey, subject)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by AuthMiddleware
func UserID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}
