package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// ContextUserIDKey is the gin context key holding the request identity.
const ContextUserIDKey = "userID"

// identityClaims is the expected JWT payload. Only the subject is used.
type identityClaims struct {
	jwt.RegisteredClaims
}

// IdentityMiddleware attributes each request to a user. A valid bearer token
// sets the identity from its subject claim; requests without one fall back
// to defaultUser. Full authentication is out of scope here, so a malformed
// or expired token is rejected rather than silently downgraded.
func IdentityMiddleware(jwtSecret, defaultUser string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextUserIDKey, defaultUser)
			c.Next()
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithEnvelope(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}", "identity")
			return
		}

		claims := &identityClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			abortWithEnvelope(c, http.StatusUnauthorized, "invalid token", "identity")
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Next()
	}
}

// userIDFromContext returns the identity set by IdentityMiddleware.
func userIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// errorEnvelope is the structured failure body returned at the API boundary.
type errorEnvelope struct {
	Error     string    `json:"error"`
	Context   string    `json:"context"`
	Timestamp time.Time `json:"timestamp"`
}

// abortWithEnvelope writes the error envelope and stops the handler chain.
func abortWithEnvelope(c *gin.Context, code int, message, component string) {
	c.AbortWithStatusJSON(code, errorEnvelope{
		Error:     message,
		Context:   component,
		Timestamp: time.Now().UTC(),
	})
}
