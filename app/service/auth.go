package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/types"
	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type seniorUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.SeniorUser, error)
	FindByID(ctx context.Context, id uint64) (*entity.SeniorUser, error)
}

type VerificationMailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

type AsyncRunner func(task func())

type AuthServiceOption func(*AuthService)

func WithAsyncRunner(runner AsyncRunner) AuthServiceOption {
	return func(s *AuthService) {
		if runner != nil {
			s.asyncRunner = runner
		}
	}
}

func WithMailer(mailer VerificationMailer) AuthServiceOption {
	return func(s *AuthService) {
		if mailer != nil {
			s.mailer = mailer
		}
	}
}

// AuthService wires the login, registration and session flows exposed over HTTP and gRPC.
type AuthService struct {
	seniors       seniorUserRepository
	credentials   *CredentialVerifier
	identities    *IdentityResolver
	tokens        *TokenService
	verifications *VerificationEngine
	federator     *OAuthFederator
	nicknames     NicknameGenerator
	policy        config.PasswordPolicy
	mailer        VerificationMailer
	asyncRunner   AsyncRunner
}

func NewAuthService(
	seniors seniorUserRepository,
	credentials *CredentialVerifier,
	identities *IdentityResolver,
	tokens *TokenService,
	verifications *VerificationEngine,
	federator *OAuthFederator,
	nicknames NicknameGenerator,
	cfg *config.Config,
	opts ...AuthServiceOption,
) *AuthService {
	svc := &AuthService{
		seniors:       seniors,
		credentials:   credentials,
		identities:    identities,
		tokens:        tokens,
		verifications: verifications,
		federator:     federator,
		nicknames:     nicknames,
		policy:        cfg.Password.Policy,
		mailer:        noopMailer{},
		asyncRunner: func(task func()) {
			go task()
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *AuthService) SeniorLogin(ctx context.Context, email, password string) (*dto.TokenPair, error) {
	id, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if id, err = s.identities.ResolvePassword(ctx, id); err != nil {
		return nil, err
	}
	return s.tokens.Issue(ctx, id, entity.AccountKindSenior)
}

func (s *AuthService) OAuthProviders() []entity.OAuthProvider {
	return s.federator.Providers()
}

func (s *AuthService) AuthorizeURL(provider entity.OAuthProvider, state string) (string, error) {
	return s.federator.AuthorizeURL(provider, state)
}

func (s *AuthService) OAuthLogin(ctx context.Context, provider entity.OAuthProvider, code string) (*dto.TokenPair, error) {
	profile, err := s.federator.Exchange(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	id, err := s.identities.ResolveOAuth(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(ctx, id, entity.AccountKindNormal)
}

// RegisterSenior creates an unverified senior account and mails the first verification code.
func (s *AuthService) RegisterSenior(ctx context.Context, req *types.RegisterSeniorRequest) (*dto.RegisterResult, error) {
	email := NormalizeEmail(req.Email)

	existing, err := s.seniors.FindByEmail(ctx, email)
	if err != nil {
		return nil, persistenceError(err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if err = s.policy.Validate(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = s.nicknames.Next()
	}

	now := time.Now()
	user := &entity.SeniorUser{
		Email:                 email,
		PasswordHash:          string(hashedPassword),
		Name:                  strings.TrimSpace(req.Name),
		Phone:                 strings.TrimSpace(req.Phone),
		Nickname:              nickname,
		Major:                 strings.TrimSpace(req.Major),
		ExperienceYears:       req.ExperienceYears,
		MentoringPrice:        req.MentoringPrice,
		RepresentativeCareers: req.RepresentativeCareers,
		Description:           req.Description,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	code, err := s.verifications.Enroll(ctx, user)
	if err != nil {
		return nil, err
	}
	s.sendVerificationCode(user, code)

	return &dto.RegisterResult{Senior: user, VerificationCode: code}, nil
}

// RequestVerificationByEmail issues a fresh code for an unverified senior and mails it.
func (s *AuthService) RequestVerificationByEmail(ctx context.Context, email string) error {
	user, err := s.seniors.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return persistenceError(err)
	}
	if user == nil {
		return ErrNotFound
	}

	code, err := s.verifications.RequestVerification(ctx, user.ID)
	if err != nil {
		return err
	}
	s.sendVerificationCode(user, code)
	return nil
}

func (s *AuthService) ConfirmVerification(ctx context.Context, seniorID uint64, code string) error {
	return s.verifications.Confirm(ctx, seniorID, code)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken)
}

func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	id, err := claims.AccountID()
	if err != nil {
		return ErrMalformed
	}
	return s.tokens.Revoke(ctx, id, claims.Kind)
}

// Account returns the caller's own account.
func (s *AuthService) Account(ctx context.Context, claims *Claims) (*dto.Account, error) {
	id, err := claims.AccountID()
	if err != nil {
		return nil, ErrMalformed
	}
	return s.identities.Account(ctx, claims.Kind, id)
}

// DeleteAccount removes the caller's own account and with it the session.
func (s *AuthService) DeleteAccount(ctx context.Context, claims *Claims) error {
	id, err := claims.AccountID()
	if err != nil {
		return ErrMalformed
	}
	return s.identities.Delete(ctx, claims.Kind, id)
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.VerifyAccess(tokenString)
}

func (s *AuthService) AccessTTL() time.Duration {
	return s.tokens.AccessTTL()
}

func (s *AuthService) RefreshTTL() time.Duration {
	return s.tokens.RefreshTTL()
}

func (s *AuthService) sendVerificationCode(user *entity.SeniorUser, code string) {
	s.asyncRunner(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.mailer.SendVerificationCode(sendCtx, user.Email, user.Name, code); err != nil {
			logrus.WithError(err).WithField("senior_id", user.ID).Error("failed to send verification code")
		}
	})
}

type noopMailer struct{}

func (noopMailer) SendVerificationCode(context.Context, string, string, string) error {
	return nil
}
