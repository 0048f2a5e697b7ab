package dto

import "github.com/vibast-solutions/ms-go-mentor-auth/app/entity"

// TokenPair is an access and refresh token issued together. Lifetimes are in seconds.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  int64
	RefreshExpiresIn int64
}

type RegisterResult struct {
	Senior           *entity.SeniorUser
	VerificationCode string
}

type OAuthProfile struct {
	Provider    entity.OAuthProvider
	ExternalID  string
	DisplayName string
}

// Account is the row a token subject points at. Exactly one of Normal and Senior is set.
type Account struct {
	Kind   entity.AccountKind
	Normal *entity.NormalUser
	Senior *entity.SeniorUser
}
