package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/pkg/auth"
)

const (
	UserIDKey = "userID"
	ClaimsKey = "claims"
	TokenKey  = "token"
)

// AuthMiddleware requires a valid, unrevoked access token in the Authorization header.
func AuthMiddleware(jwtManager *auth.JWTManager, blacklist auth.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		authenticate(c, jwtManager, blacklist, token)
	}
}

// WSAuthMiddleware accepts the token from the query string as browsers
// cannot set headers on a websocket handshake.
func WSAuthMiddleware(jwtManager *auth.JWTManager, blacklist auth.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token, _ = auth.ExtractTokenFromHeader(c.Request)
		}
		if token == "" {
			abort(c, http.StatusUnauthorized, "Missing token")
			return
		}
		authenticate(c, jwtManager, blacklist, token)
	}
}

func authenticate(c *gin.Context, jwtManager *auth.JWTManager, blacklist auth.Blacklist, token string) {
	if blacklist != nil {
		revoked, err := blacklist.IsRevoked(c.Request.Context(), token)
		if err != nil || revoked {
			abort(c, http.StatusUnauthorized, "Token has been revoked")
			return
		}
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		abort(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		abort(c, http.StatusUnauthorized, "Invalid user id")
		return
	}

	c.Set(UserIDKey, userID)
	c.Set(ClaimsKey, claims)
	c.Set(TokenKey, token)
	c.Next()
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok || models.Role(claims.Role) != role {
			abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func UserIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"message":    message,
		"data":       nil,
		"statusCode": status,
	})
}
