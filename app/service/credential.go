package service

import (
	"context"
	"sync"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"

	"golang.org/x/crypto/bcrypt"
)

type seniorFinder interface {
	FindByEmail(ctx context.Context, email string) (*entity.SeniorUser, error)
}

// CredentialVerifier checks a senior's email and password against the stored bcrypt hash.
type CredentialVerifier struct {
	seniors seniorFinder
}

func NewCredentialVerifier(seniors seniorFinder) *CredentialVerifier {
	return &CredentialVerifier{seniors: seniors}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// Verify returns the id of the senior owning email when password matches.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (uint64, error) {
	user, err := v.seniors.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return 0, persistenceError(err)
	}
	if user == nil {
		// keep the response time of an unknown email close to a wrong password
		_ = bcrypt.CompareHashAndPassword(missingUserHash(), []byte(password))
		return 0, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

func missingUserHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("missing-user-placeholder"), bcrypt.DefaultCost)
	})
	return dummyHash
}
