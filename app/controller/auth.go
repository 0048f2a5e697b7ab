package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/middleware"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/security"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/types"
	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type authService interface {
	SeniorLogin(ctx context.Context, email, password string) (*dto.TokenPair, error)
	AuthorizeURL(provider entity.OAuthProvider, state string) (string, error)
	OAuthLogin(ctx context.Context, provider entity.OAuthProvider, code string) (*dto.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
	Logout(ctx context.Context, claims *service.Claims) error
	ValidateAccessToken(tokenString string) (*service.Claims, error)
}

type AuthController struct {
	authService authService
	stateSecret string
	cookies     cookieJar
}

func NewAuthController(authService authService, cfg *config.Config) *AuthController {
	return &AuthController{
		authService: authService,
		stateSecret: cfg.OAuth.StateSecret,
		cookies:     cookieJar{secure: cfg.Cookie.Secure},
	}
}

// OAuthRedirect sends the browser to the provider's consent page with a signed state cookie.
func (c *AuthController) OAuthRedirect(ctx echo.Context) error {
	provider, err := entity.ParseOAuthProvider(ctx.Param("provider"))
	if err != nil {
		logrus.WithField("provider", ctx.Param("provider")).Debug("Unknown oauth provider")
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "unknown provider"})
	}

	state, err := security.NewOAuthState(string(provider), c.stateSecret)
	if err != nil {
		logrus.WithError(err).Error("Failed to create oauth state")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	authorizeURL, err := c.authService.AuthorizeURL(provider, state)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProvider) {
			logrus.WithField("provider", provider).Debug("OAuth provider is not configured")
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "unknown provider"})
		}
		logrus.WithError(err).WithField("provider", provider).Error("Failed to build authorize url")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	c.cookies.setState(ctx, string(provider), state)
	return ctx.Redirect(http.StatusFound, authorizeURL)
}

func (c *AuthController) OAuthCallback(ctx echo.Context) error {
	provider, err := entity.ParseOAuthProvider(ctx.Param("provider"))
	if err != nil {
		logrus.WithField("provider", ctx.Param("provider")).Debug("Unknown oauth provider")
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "unknown provider"})
	}
	logger := logrus.WithField("provider", provider)

	if denied := ctx.QueryParam("error"); denied != "" {
		logger.WithField("error", denied).Info("OAuth consent was not granted")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "authorization denied"})
	}

	code := ctx.QueryParam("code")
	if code == "" {
		logger.Debug("OAuth callback without code")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "code is required"})
	}

	var stored string
	if cookie, cookieErr := ctx.Cookie(OAuthStateCookie); cookieErr == nil {
		stored = cookie.Value
	}
	c.cookies.clearState(ctx, string(provider))
	if !security.VerifyOAuthState(ctx.QueryParam("state"), stored, string(provider), c.stateSecret) {
		logger.Warn("OAuth callback with invalid state")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid oauth state"})
	}

	logger.Info("OAuth login request received")
	pair, err := c.authService.OAuthLogin(ctx.Request().Context(), provider, code)
	if err != nil {
		var exchangeErr *service.OAuthExchangeError
		switch {
		case errors.Is(err, service.ErrUnknownProvider):
			logger.Debug("OAuth provider is not configured")
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "unknown provider"})
		case errors.As(err, &exchangeErr) && exchangeErr.Stage == service.StageTimeout:
			logger.WithError(err).Warn("OAuth login failed: provider timed out")
			return ctx.JSON(http.StatusGatewayTimeout, types.ErrorResponse{Error: "identity provider timed out"})
		case errors.Is(err, service.ErrOAuthExchangeFailed):
			logger.WithError(err).Warn("OAuth login failed: exchange rejected")
			return ctx.JSON(http.StatusBadGateway, types.ErrorResponse{Error: "identity provider exchange failed"})
		}
		logger.WithError(err).Error("OAuth login failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logger.Info("OAuth login succeeded")
	c.cookies.setTokens(ctx, pair)
	return ctx.JSON(http.StatusOK, types.NewTokenResponse(pair))
}

func (c *AuthController) SeniorLogin(ctx echo.Context) error {
	req, err := types.NewSeniorLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind senior login request")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Senior login validation failed")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	logger := logrus.WithField("email", req.Email)
	logger.Info("Senior login request received")
	pair, err := c.authService.SeniorLogin(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warn("Senior login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid credentials"})
		}
		if errors.Is(err, service.ErrNotVerified) {
			logger.Warn("Senior login failed: email not verified")
			return ctx.JSON(http.StatusForbidden, types.ErrorResponse{Error: "email address is not verified"})
		}
		logger.WithError(err).Error("Senior login failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logger.Info("Senior login succeeded")
	c.cookies.setTokens(ctx, pair)
	return ctx.JSON(http.StatusOK, types.NewTokenResponse(pair))
}

func (c *AuthController) RefreshToken(ctx echo.Context) error {
	req, err := types.NewRefreshTokenRequestFromContext(ctx, middleware.RefreshTokenCookie)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind refresh token request")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Refresh token validation failed")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	logrus.Info("Refresh token request received")
	pair, err := c.authService.Refresh(ctx.Request().Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRevoked):
			logrus.Warn("Refresh token failed: token revoked")
			c.cookies.clearTokens(ctx)
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "refresh token has been revoked"})
		case errors.Is(err, service.ErrExpired):
			logrus.Info("Refresh token failed: token expired")
			c.cookies.clearTokens(ctx)
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "refresh token has expired"})
		case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrMalformed):
			logrus.WithError(err).Warn("Refresh token failed: invalid token")
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid refresh token"})
		}
		logrus.WithError(err).Error("Refresh token failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Refresh token succeeded")
	c.cookies.setTokens(ctx, pair)
	return ctx.JSON(http.StatusOK, types.NewTokenResponse(pair))
}

func (c *AuthController) Logout(ctx echo.Context) error {
	claims, ok := ctx.Get(middleware.ContextKeyClaims).(*service.Claims)
	if !ok {
		logrus.Warn("Logout failed: missing claims in context")
		return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
	}

	logger := logrus.WithFields(logrus.Fields{"account_id": claims.Subject, "kind": claims.Kind})
	logger.Info("Logout request received")
	if err := c.authService.Logout(ctx.Request().Context(), claims); err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrMalformed) {
			logger.Warn("Logout failed: account not found")
			c.cookies.clearTokens(ctx)
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
		}
		logger.WithError(err).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logger.Info("Logout succeeded")
	c.cookies.clearTokens(ctx)
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "logged out successfully"})
}

func (c *AuthController) ValidateToken(ctx echo.Context) error {
	req, err := types.NewValidateTokenRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind validate token request")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Validate token failed")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	claims, err := c.authService.ValidateAccessToken(req.AccessToken)
	if err != nil {
		logrus.WithError(err).Debug("Validate token failed")
		return ctx.JSON(http.StatusOK, types.ValidateTokenResponse{Valid: false})
	}
	accountID, err := claims.AccountID()
	if err != nil {
		logrus.WithError(err).Debug("Validate token failed: bad subject")
		return ctx.JSON(http.StatusOK, types.ValidateTokenResponse{Valid: false})
	}

	resp := types.ValidateTokenResponse{
		Valid:     true,
		AccountID: accountID,
		Kind:      string(claims.Kind),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.Unix()
	}
	logger := logrus.WithField("account_id", accountID)
	if caller, ok := middleware.CallerService(ctx); ok {
		logger = logger.WithField("caller_service", caller)
	}
	logger.Debug("Validate token succeeded")
	return ctx.JSON(http.StatusOK, resp)
}
