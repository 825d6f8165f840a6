package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const requestedByKey = "requestedBy"

type RequesterClaims struct {
	Email *string `json:"email"`
	Name  string  `json:"name"`
	jwt.StandardClaims
}

// Requester is the identity stored on snapshots: the email when the
// token carries one, otherwise the subject.
func (c RequesterClaims) Requester() string {
	if c.Email != nil && *c.Email != "" {
		return *c.Email
	}
	return c.Subject
}

func parseRequesterJWT(jwtStr string, decodeToken string) (*RequesterClaims, error) {
	claims := &RequesterClaims{}
	_, err := jwt.ParseWithClaims(jwtStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(decodeToken), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.ExpiresAt == 0 {
		return nil, fmt.Errorf("jwt has no expiry")
	}

	return claims, nil
}

// authMiddleware identifies the caller when a bearer token is sent.
// Requests without one stay anonymous; a bad token is rejected.
func (m ApiHandler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if m.JwtDecodeToken == "" || header == "" {
		c.Next()
		return
	}

	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		returnErrorJsonCode(fmt.Errorf("authorization header must be a bearer token"), c, http.StatusUnauthorized)
		return
	}

	claims, err := parseRequesterJWT(tokenStr, m.JwtDecodeToken)
	if err != nil {
		returnErrorJsonCode(err, c, http.StatusUnauthorized)
		return
	}

	c.Set(requestedByKey, claims.Requester())
	c.Next()
}

func requestedBy(c *gin.Context) *string {
	v, ok := c.Get(requestedByKey)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
