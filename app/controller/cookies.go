package controller

import (
	"net/http"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/middleware"

	"github.com/labstack/echo/v4"
)

const (
	OAuthStateCookie = "oauth_state"

	oauthStateMaxAge = 10 * time.Minute
)

type cookieJar struct {
	secure bool
}

func (j cookieJar) setTokens(ctx echo.Context, pair *dto.TokenPair) {
	ctx.SetCookie(j.cookie(middleware.AccessTokenCookie, pair.AccessToken, "/", int(pair.AccessExpiresIn)))
	ctx.SetCookie(j.cookie(middleware.RefreshTokenCookie, pair.RefreshToken, "/", int(pair.RefreshExpiresIn)))
}

func (j cookieJar) clearTokens(ctx echo.Context) {
	ctx.SetCookie(j.cookie(middleware.AccessTokenCookie, "", "/", -1))
	ctx.SetCookie(j.cookie(middleware.RefreshTokenCookie, "", "/", -1))
}

// The state cookie is scoped to the provider's callback path.
func (j cookieJar) setState(ctx echo.Context, provider, state string) {
	ctx.SetCookie(j.cookie(OAuthStateCookie, state, "/auth/"+provider, int(oauthStateMaxAge.Seconds())))
}

func (j cookieJar) clearState(ctx echo.Context, provider string) {
	ctx.SetCookie(j.cookie(OAuthStateCookie, "", "/auth/"+provider, -1))
}

func (j cookieJar) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
