package middleware

import (
	"net/http"
	"strings"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	ContextKeyClaims      = "claims"
	ContextKeyAccountID   = "account_id"
	ContextKeyAccountKind = "account_kind"
)

type accessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*service.Claims, error)
}

type AuthMiddleware struct {
	authService accessTokenValidator
}

func NewAuthMiddleware(authService accessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth accepts the access token from the access_token cookie or an Authorization bearer header.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, ok := accessTokenFromRequest(c)
		if !ok {
			logrus.Debug("Missing access token")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "missing access token",
			})
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			logrus.WithError(err).Debug("Invalid or expired access token")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid or expired token",
			})
		}
		accountID, err := claims.AccountID()
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid or expired token",
			})
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyAccountID, accountID)
		c.Set(ContextKeyAccountKind, claims.Kind)

		return next(c)
	}
}

func accessTokenFromRequest(c echo.Context) (string, bool) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", false
		}
		return parts[1], true
	}

	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
