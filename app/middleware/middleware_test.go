package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/middleware"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type stubValidator map[string]*service.Claims

func (s stubValidator) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	if claims, ok := s[tokenString]; ok {
		return claims, nil
	}
	return nil, service.ErrInvalidSignature
}

func newValidator() stubValidator {
	return stubValidator{
		"good": {
			Kind:             entity.AccountKindSenior,
			Use:              service.TokenUseAccess,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "12"},
		},
	}
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := middleware.NewAuthMiddleware(newValidator()).RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token good")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := middleware.NewAuthMiddleware(newValidator()).RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := middleware.NewAuthMiddleware(newValidator()).RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := middleware.NewAuthMiddleware(newValidator()).RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if id, ok := ctx.Get(middleware.ContextKeyAccountID).(uint64); !ok || id != 12 {
		t.Fatalf("expected account id 12 in context, got %v", ctx.Get(middleware.ContextKeyAccountID))
	}
	if kind, ok := ctx.Get(middleware.ContextKeyAccountKind).(entity.AccountKind); !ok || kind != entity.AccountKindSenior {
		t.Fatalf("expected senior kind in context, got %v", ctx.Get(middleware.ContextKeyAccountKind))
	}
}

func TestRequireAuth_Cookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "good"})
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := middleware.NewAuthMiddleware(newValidator()).RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

type failingInternalAuth struct{}

func (failingInternalAuth) ValidateInternalAPIKey(context.Context, string) (string, error) {
	return "", errors.New("key store unavailable")
}

func runAPIKey(t *testing.T, authService service.InternalAuthService, method, apiKey string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := middleware.NewAPIKeyMiddleware(authService).RequireAPIKey(okHandler)(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, ctx
}

func TestRequireAPIKey(t *testing.T) {
	authService := service.NewInternalAuthService([]string{"booking=secret-key"})

	if rec, _ := runAPIKey(t, authService, http.MethodPost, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}
	if rec, _ := runAPIKey(t, authService, http.MethodPost, "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", rec.Code)
	}

	rec, ctx := runAPIKey(t, authService, http.MethodPost, "secret-key")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if caller, ok := middleware.CallerService(ctx); !ok || caller != "booking" {
		t.Fatalf("expected caller booking, got %q", caller)
	}

	rec, ctx = runAPIKey(t, authService, http.MethodOptions, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected preflight to pass, got %d", rec.Code)
	}
	if _, ok := middleware.CallerService(ctx); ok {
		t.Fatalf("preflight must not carry a caller")
	}
}

func TestRequireAPIKey_InternalError(t *testing.T) {
	if rec, _ := runAPIKey(t, failingInternalAuth{}, http.MethodPost, "any"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
