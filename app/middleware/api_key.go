package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	APIKeyHeader            = "X-API-Key"
	ContextKeyCallerService = "caller_service"
)

type internalKeyValidator interface {
	ValidateInternalAPIKey(ctx context.Context, apiKey string) (string, error)
}

// APIKeyMiddleware admits calls from other marketplace services that hold a configured internal key.
type APIKeyMiddleware struct {
	keys internalKeyValidator
}

func NewAPIKeyMiddleware(keys internalKeyValidator) *APIKeyMiddleware {
	return &APIKeyMiddleware{keys: keys}
}

func (m *APIKeyMiddleware) RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Method == http.MethodOptions {
			return next(c)
		}

		logger := logrus.WithFields(logrus.Fields{"path": c.Path(), "remote_ip": c.RealIP()})
		apiKey := strings.TrimSpace(c.Request().Header.Get(APIKeyHeader))
		if apiKey == "" {
			logger.Debug("Internal call without api key")
			return c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
		}

		caller, err := m.keys.ValidateInternalAPIKey(c.Request().Context(), apiKey)
		switch {
		case errors.Is(err, service.ErrInvalidInternalAPIKey):
			logger.Warn("Internal call with unknown api key")
			return c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
		case err != nil:
			logger.WithError(err).Error("API key validation failed")
			return c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
		}

		logger.WithField("caller_service", caller).Debug("Internal call accepted")
		c.Set(ContextKeyCallerService, caller)
		return next(c)
	}
}

// CallerService returns the service name bound to the internal key of the request, if any.
func CallerService(c echo.Context) (string, bool) {
	caller, ok := c.Get(ContextKeyCallerService).(string)
	return caller, ok && caller != ""
}
