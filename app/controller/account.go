package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/middleware"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/types"
	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type accountService interface {
	Account(ctx context.Context, claims *service.Claims) (*dto.Account, error)
	DeleteAccount(ctx context.Context, claims *service.Claims) error
}

// AccountController serves the caller's own account. The subject always comes from the access token.
type AccountController struct {
	accountService accountService
	cookies        cookieJar
}

func NewAccountController(accountService accountService, cfg *config.Config) *AccountController {
	return &AccountController{
		accountService: accountService,
		cookies:        cookieJar{secure: cfg.Cookie.Secure},
	}
}

func (c *AccountController) Me(ctx echo.Context) error {
	claims, ok := ctx.Get(middleware.ContextKeyClaims).(*service.Claims)
	if !ok {
		logrus.Warn("Account lookup failed: missing claims in context")
		return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
	}

	logger := logrus.WithFields(logrus.Fields{"account_id": claims.Subject, "kind": claims.Kind})
	account, err := c.accountService.Account(ctx.Request().Context(), claims)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrMalformed) {
			logger.Info("Account lookup failed: account not found")
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "account not found"})
		}
		logger.WithError(err).Error("Account lookup failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, types.NewAccountResponse(account))
}

func (c *AccountController) Delete(ctx echo.Context) error {
	claims, ok := ctx.Get(middleware.ContextKeyClaims).(*service.Claims)
	if !ok {
		logrus.Warn("Account deletion failed: missing claims in context")
		return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
	}

	logger := logrus.WithFields(logrus.Fields{"account_id": claims.Subject, "kind": claims.Kind})
	logger.Info("Account deletion request received")
	if err := c.accountService.DeleteAccount(ctx.Request().Context(), claims); err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrMalformed) {
			logger.Info("Account deletion failed: account not found")
			c.cookies.clearTokens(ctx)
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "account not found"})
		}
		logger.WithError(err).Error("Account deletion failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logger.Info("Account deleted")
	c.cookies.clearTokens(ctx)
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "account deleted"})
}
