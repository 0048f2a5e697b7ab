package service

import (
	"context"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/repository"

	"github.com/sirupsen/logrus"
)

type normalUserStore interface {
	FindByOAuth(ctx context.Context, provider entity.OAuthProvider, oauthID string) (*entity.NormalUser, error)
	FindByID(ctx context.Context, id uint64) (*entity.NormalUser, error)
	UpsertOAuth(ctx context.Context, user *entity.NormalUser) (bool, error)
	DeleteByID(ctx context.Context, id uint64) (int64, error)
}

type seniorLookup interface {
	FindByID(ctx context.Context, id uint64) (*entity.SeniorUser, error)
}

type seniorStore interface {
	seniorLookup
	DeleteByID(ctx context.Context, id uint64) (int64, error)
}

type NicknameGenerator interface {
	Next() string
}

// IdentityResolver maps an authenticated principal to an account id.
type IdentityResolver struct {
	normals   normalUserStore
	seniors   seniorStore
	nicknames NicknameGenerator
	now       func() time.Time
}

func NewIdentityResolver(normals normalUserStore, seniors seniorStore, nicknames NicknameGenerator) *IdentityResolver {
	return &IdentityResolver{
		normals:   normals,
		seniors:   seniors,
		nicknames: nicknames,
		now:       time.Now,
	}
}

// ResolveOAuth returns the normal account bound to the profile, creating it on first login.
// Concurrent first logins for one identity converge on a single row.
func (r *IdentityResolver) ResolveOAuth(ctx context.Context, profile *dto.OAuthProfile) (uint64, error) {
	existing, err := r.normals.FindByOAuth(ctx, profile.Provider, profile.ExternalID)
	if err != nil {
		return 0, persistenceError(err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	nickname := strings.TrimSpace(profile.DisplayName)
	if nickname == "" {
		nickname = r.nicknames.Next()
	}
	now := r.now()
	user := &entity.NormalUser{
		OAuthProvider: profile.Provider,
		OAuthID:       profile.ExternalID,
		Nickname:      nickname,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := r.normals.UpsertOAuth(ctx, user)
	if err != nil {
		if !repository.IsDuplicateEntry(err) && !repository.IsDeadlock(err) {
			return 0, persistenceError(err)
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"provider": profile.Provider,
		}).Debug("retrying oauth account creation")

		if created, err = r.normals.UpsertOAuth(ctx, user); err != nil {
			return 0, persistenceError(err)
		}
	}

	if created {
		logrus.WithFields(logrus.Fields{
			"provider":   profile.Provider,
			"account_id": user.ID,
		}).Info("created oauth account")
	}
	return user.ID, nil
}

// ResolvePassword confirms a senior account exists and has a verified email address.
func (r *IdentityResolver) ResolvePassword(ctx context.Context, accountID uint64) (uint64, error) {
	user, err := r.seniors.FindByID(ctx, accountID)
	if err != nil {
		return 0, persistenceError(err)
	}
	if user == nil {
		return 0, ErrNotFound
	}
	if !user.EmailVerified {
		return 0, ErrNotVerified
	}
	return user.ID, nil
}

func (r *IdentityResolver) Account(ctx context.Context, kind entity.AccountKind, id uint64) (*dto.Account, error) {
	switch kind {
	case entity.AccountKindNormal:
		user, err := r.normals.FindByID(ctx, id)
		if err != nil {
			return nil, persistenceError(err)
		}
		if user == nil {
			return nil, ErrNotFound
		}
		return &dto.Account{Kind: kind, Normal: user}, nil
	case entity.AccountKindSenior:
		user, err := r.seniors.FindByID(ctx, id)
		if err != nil {
			return nil, persistenceError(err)
		}
		if user == nil {
			return nil, ErrNotFound
		}
		return &dto.Account{Kind: kind, Senior: user}, nil
	default:
		return nil, ErrMalformed
	}
}

// Delete removes the account row together with its stored refresh token, so no refresh token
// issued to it rotates again. Access tokens stay valid until they expire.
func (r *IdentityResolver) Delete(ctx context.Context, kind entity.AccountKind, id uint64) error {
	var (
		deleted int64
		err     error
	)
	switch kind {
	case entity.AccountKindNormal:
		deleted, err = r.normals.DeleteByID(ctx, id)
	case entity.AccountKindSenior:
		deleted, err = r.seniors.DeleteByID(ctx, id)
	default:
		return ErrMalformed
	}
	if err != nil {
		return persistenceError(err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	logrus.WithFields(logrus.Fields{
		"account_id":   id,
		"account_kind": kind,
	}).Info("deleted account")
	return nil
}
