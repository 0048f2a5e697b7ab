package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("account not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNotVerified           = errors.New("email address is not verified")
	ErrOAuthExchangeFailed   = errors.New("oauth exchange failed")
	ErrUnknownProvider       = errors.New("unknown oauth provider")
	ErrExpired               = errors.New("token has expired")
	ErrInvalidSignature      = errors.New("token signature is invalid")
	ErrMalformed             = errors.New("token is malformed")
	ErrRevoked               = errors.New("refresh token has been revoked")
	ErrSigningKeyUnavailable = errors.New("signing key is not loaded")
	ErrCodeMismatch          = errors.New("verification code does not match")
	ErrNoPendingVerification = errors.New("no pending verification")
	ErrVerificationExpired   = errors.New("verification code has expired")
	ErrAlreadyVerified       = errors.New("email address is already verified")
	ErrUserExists            = errors.New("user already exists")
	ErrWeakPassword          = errors.New("password does not meet policy requirements")
	ErrPersistence           = errors.New("persistence failure")
)

const (
	StageToken     = "token"
	StageProfile   = "profile"
	StageNormalize = "normalize"
	StageTimeout   = "timeout"
)

// OAuthExchangeError reports which step of a provider exchange failed.
// It matches ErrOAuthExchangeFailed with errors.Is.
type OAuthExchangeError struct {
	Provider string
	Stage    string
	Err      error
}

func (e *OAuthExchangeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oauth exchange with %s failed at %s", e.Provider, e.Stage)
	}
	return fmt.Sprintf("oauth exchange with %s failed at %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *OAuthExchangeError) Unwrap() error {
	return e.Err
}

func (e *OAuthExchangeError) Is(target error) bool {
	return target == ErrOAuthExchangeFailed
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
