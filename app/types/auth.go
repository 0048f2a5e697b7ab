package types

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
)

type SeniorLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewSeniorLoginRequestFromContext(ctx echo.Context) (*SeniorLoginRequest, error) {
	var body SeniorLoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *SeniorLoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errors.New("email and password are required")
	}

	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// NewRefreshTokenRequestFromContext reads the refresh token from the body, falling back to the cookie.
func NewRefreshTokenRequestFromContext(ctx echo.Context, cookieName string) (*RefreshTokenRequest, error) {
	var body RefreshTokenRequest
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&body); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(body.RefreshToken) == "" {
		if cookie, err := ctx.Cookie(cookieName); err == nil {
			body.RefreshToken = cookie.Value
		}
	}

	return &body, nil
}

func (r *RefreshTokenRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return errors.New("refresh_token is required")
	}

	return nil
}

type RegisterSeniorRequest struct {
	Email                 string `json:"email"`
	Password              string `json:"password"`
	Name                  string `json:"name"`
	Phone                 string `json:"phone"`
	Nickname              string `json:"nickname"`
	Major                 string `json:"major"`
	ExperienceYears       int    `json:"experience_years"`
	MentoringPrice        uint32 `json:"mentoring_price"`
	RepresentativeCareers string `json:"representative_careers"`
	Description           string `json:"description"`
}

func NewRegisterSeniorRequestFromContext(ctx echo.Context) (*RegisterSeniorRequest, error) {
	var body RegisterSeniorRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *RegisterSeniorRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errors.New("email and password are required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return errors.New("email is not a valid address")
	}
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Phone) == "" {
		return errors.New("name and phone are required")
	}
	if r.ExperienceYears < 0 {
		return errors.New("experience_years must not be negative")
	}

	return nil
}

type RequestVerificationRequest struct {
	Email string `json:"email"`
}

func NewRequestVerificationRequestFromContext(ctx echo.Context) (*RequestVerificationRequest, error) {
	var body RequestVerificationRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *RequestVerificationRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}

	return nil
}

type ConfirmVerificationRequest struct {
	SeniorID uint64 `param:"id"`
	Code     string `json:"code"`
}

func NewConfirmVerificationRequestFromContext(ctx echo.Context) (*ConfirmVerificationRequest, error) {
	var body ConfirmVerificationRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ConfirmVerificationRequest) Validate() error {
	if r.SeniorID == 0 {
		return errors.New("senior id is required")
	}
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code is required")
	}

	return nil
}

type ValidateTokenRequest struct {
	AccessToken string `json:"access_token"`
}

func NewValidateTokenRequestFromContext(ctx echo.Context) (*ValidateTokenRequest, error) {
	var body ValidateTokenRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ValidateTokenRequest) Validate() error {
	if strings.TrimSpace(r.AccessToken) == "" {
		return errors.New("access_token is required")
	}

	return nil
}
