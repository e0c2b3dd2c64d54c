package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/srrathi/cyberplace-be/pkg/response"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// RequireAuth validates the bearer token and stores the caller's identity
// in the request context as user_id and username.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header is required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(am.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Unauthorized(c, "invalid token claims")
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(float64)
		if !ok {
			response.Unauthorized(c, "invalid subject in token")
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		if username == "" {
			response.Unauthorized(c, "missing username in token")
			c.Abort()
			return
		}

		c.Set("user_id", uint(sub))
		c.Set("username", username)
		c.Next()
	}
}

// Identity reads the username set by RequireAuth. Second return is false
// when the request skipped the auth middleware.
func Identity(c *gin.Context) (string, bool) {
	username, ok := c.Get("username")
	if !ok {
		return "", false
	}
	s, ok := username.(string)
	return s, ok && s != ""
}

// UserID reads the numeric user id set by RequireAuth.
func UserID(c *gin.Context) (uint, bool) {
	id, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	n, ok := id.(uint)
	return n, ok
}
