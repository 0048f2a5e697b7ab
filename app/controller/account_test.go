package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/controller"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/middleware"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/types"

	"github.com/golang-jwt/jwt/v5"
)

type stubAccountService struct {
	account *dto.Account
	err     error
	deleted *service.Claims
}

func (s *stubAccountService) Account(_ context.Context, _ *service.Claims) (*dto.Account, error) {
	return s.account, s.err
}

func (s *stubAccountService) DeleteAccount(_ context.Context, claims *service.Claims) error {
	s.deleted = claims
	return s.err
}

func seniorClaims() *service.Claims {
	return &service.Claims{
		Kind:             entity.AccountKindSenior,
		Use:              service.TokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
	}
}

func TestAccountMe(t *testing.T) {
	svc := &stubAccountService{account: &dto.Account{
		Kind: entity.AccountKindSenior,
		Senior: &entity.SeniorUser{
			ID:           7,
			Email:        "a@x.com",
			PasswordHash: "$2a$10$secret",
			Nickname:     "kim",
			CreatedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	ctrl := controller.NewAccountController(svc, testConfig())

	ctx, rec := newJSONContext(http.MethodGet, "/users/me", "")
	ctx.Set(middleware.ContextKeyClaims, seniorClaims())
	if err := ctrl.Me(ctx); err != nil {
		t.Fatalf("me returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp types.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != 7 || resp.Kind != "senior" || resp.Email != "a@x.com" || resp.EmailVerified == nil || *resp.EmailVerified {
		t.Fatalf("unexpected account response: %+v", resp)
	}

	var raw map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &raw)
	for _, secret := range []string{"password", "password_hash", "refresh_token"} {
		if _, ok := raw[secret]; ok {
			t.Fatalf("%s must not be exposed", secret)
		}
	}
}

func TestAccountMeErrors(t *testing.T) {
	cases := []struct {
		name   string
		claims *service.Claims
		err    error
		status int
	}{
		{name: "no claims", status: http.StatusUnauthorized},
		{name: "gone", claims: seniorClaims(), err: service.ErrNotFound, status: http.StatusNotFound},
		{name: "store", claims: seniorClaims(), err: service.ErrPersistence, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ctrl := controller.NewAccountController(&stubAccountService{err: tc.err}, testConfig())
		ctx, rec := newJSONContext(http.MethodGet, "/users/me", "")
		if tc.claims != nil {
			ctx.Set(middleware.ContextKeyClaims, tc.claims)
		}
		_ = ctrl.Me(ctx)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
	}
}

func TestAccountDelete(t *testing.T) {
	svc := &stubAccountService{}
	ctrl := controller.NewAccountController(svc, testConfig())
	claims := seniorClaims()

	ctx, rec := newJSONContext(http.MethodDelete, "/users/me", "")
	ctx.Set(middleware.ContextKeyClaims, claims)
	if err := ctrl.Delete(ctx); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.deleted != claims {
		t.Fatalf("expected the caller's own claims to be deleted")
	}
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		if cleared := findCookie(rec, name); cleared == nil || cleared.MaxAge >= 0 {
			t.Fatalf("expected %s cookie to be cleared", name)
		}
	}

	cases := []struct {
		name   string
		claims *service.Claims
		err    error
		status int
	}{
		{name: "no claims", status: http.StatusUnauthorized},
		{name: "already deleted", claims: claims, err: service.ErrNotFound, status: http.StatusNotFound},
		{name: "store", claims: claims, err: service.ErrPersistence, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ctrl := controller.NewAccountController(&stubAccountService{err: tc.err}, testConfig())
		ctx, rec := newJSONContext(http.MethodDelete, "/users/me", "")
		if tc.claims != nil {
			ctx.Set(middleware.ContextKeyClaims, tc.claims)
		}
		_ = ctrl.Delete(ctx)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
	}
}
