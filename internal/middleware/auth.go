package middleware

import (
	"errors"
	"strings"

	"github.com/fox-studio/site/internal/pkg/jwt"
	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextKeySubject = "auth_subject"
	ContextKeyTokenID = "auth_token_id"
	TokenCookie       = "fox-token"
)

// Auth returns a middleware that requires a valid admin token.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ValidateToken(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the subject if a valid token is present, but does not block the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := ValidateToken(extractToken(c)); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextKeySubject, claims.Subject)
	c.Set(ContextKeyTokenID, claims.ID)
}

// ValidateToken validates a bearer token and returns its claims.
func ValidateToken(rawToken string) (*jwt.Claims, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, errors.New("token is required")
	}
	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// CurrentSubject extracts the authenticated subject from context.
func CurrentSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentSubject(c) != ""
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if raw, err := c.Cookie(TokenCookie); err == nil && raw != "" {
		return NormalizeToken(raw)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
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
