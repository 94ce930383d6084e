package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/quartfeed/pkg/security"
	"github.com/labstack/echo/v4"
)

const claimsKey = "user"

// JWTAuthMiddleware checks for a valid bearer token and stores its claims.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := security.ValidateJWT(parts[1], secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// GetClaims returns the claims stored by JWTAuthMiddleware, or nil.
func GetClaims(c echo.Context) *security.Claims {
	claims, _ := c.Get(claimsKey).(*security.Claims)
	return claims
}

// GetUserID returns the authenticated API user, or 0.
func GetUserID(c echo.Context) uint {
	if claims := GetClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}
