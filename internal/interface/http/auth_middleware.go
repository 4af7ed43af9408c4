package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yanqian/learnmate/internal/infra/config"
)

const apiKeyHeader = "X-API-Key"

// authMiddleware accepts either a static API key or an HS256 bearer token.
func authMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if cfg.APIKey == "" && cfg.JWTSecret == "" {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "server_misconfigured", "authentication is enabled but no credentials are configured", nil))
			return
		}

		if key := c.GetHeader(apiKeyHeader); key != "" {
			if cfg.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid api key", nil))
				return
			}
			setPrincipal(c, principal{Subject: "api-key", Method: "api_key"})
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || cfg.JWTSecret == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		subject, err := verifyToken(strings.TrimSpace(parts[1]), cfg.JWTSecret)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid token", err))
			return
		}
		setPrincipal(c, principal{Subject: subject, Method: "jwt"})
		c.Next()
	}
}

func verifyToken(token, secret string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("token invalid")
	}
	return claims.Subject, nil
}
