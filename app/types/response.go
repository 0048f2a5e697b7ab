package types

import (
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
)

type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

func NewTokenResponse(pair *dto.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresIn:        pair.AccessExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
	}
}

type RegisterSeniorResponse struct {
	UserID  uint64 `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ValidateTokenResponse struct {
	Valid     bool   `json:"valid"`
	AccountID uint64 `json:"account_id,omitempty"`
	Kind      string `json:"kind,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// AccountResponse never carries the password hash or the stored refresh token.
type AccountResponse struct {
	ID                    uint64    `json:"id"`
	Kind                  string    `json:"kind"`
	Nickname              string    `json:"nickname"`
	OAuthProvider         string    `json:"oauth_provider,omitempty"`
	Email                 string    `json:"email,omitempty"`
	Name                  string    `json:"name,omitempty"`
	Phone                 string    `json:"phone,omitempty"`
	Major                 string    `json:"major,omitempty"`
	ExperienceYears       int       `json:"experience_years,omitempty"`
	MentoringPrice        uint32    `json:"mentoring_price,omitempty"`
	RepresentativeCareers string    `json:"representative_careers,omitempty"`
	Description           string    `json:"description,omitempty"`
	EmailVerified         *bool     `json:"email_verified,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

func NewAccountResponse(account *dto.Account) *AccountResponse {
	resp := &AccountResponse{Kind: string(account.Kind)}
	switch {
	case account.Normal != nil:
		u := account.Normal
		resp.ID = u.ID
		resp.Nickname = u.Nickname
		resp.OAuthProvider = string(u.OAuthProvider)
		resp.CreatedAt = u.CreatedAt
	case account.Senior != nil:
		u := account.Senior
		verified := u.EmailVerified
		resp.ID = u.ID
		resp.Nickname = u.Nickname
		resp.Email = u.Email
		resp.Name = u.Name
		resp.Phone = u.Phone
		resp.Major = u.Major
		resp.ExperienceYears = u.ExperienceYears
		resp.MentoringPrice = u.MentoringPrice
		resp.RepresentativeCareers = u.RepresentativeCareers
		resp.Description = u.Description
		resp.EmailVerified = &verified
		resp.CreatedAt = u.CreatedAt
	}
	return resp
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
