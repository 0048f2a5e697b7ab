package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/repository"
	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	"github.com/sirupsen/logrus"
)

const verificationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type verificationUpserter interface {
	Upsert(ctx context.Context, v *entity.EmailVerification) error
}

type CodeGenerator func(length int) (string, error)

// VerificationEngine issues and confirms email verification codes for senior accounts.
// It never sends mail.
type VerificationEngine struct {
	db            *sql.DB
	seniors       seniorLookup
	verifications verificationUpserter
	codeLength    int
	codeTTL       time.Duration
	generate      CodeGenerator
	now           func() time.Time
}

type VerificationOption func(*VerificationEngine)

func WithCodeGenerator(generate CodeGenerator) VerificationOption {
	return func(e *VerificationEngine) {
		if generate != nil {
			e.generate = generate
		}
	}
}

func WithVerificationClock(now func() time.Time) VerificationOption {
	return func(e *VerificationEngine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewVerificationEngine(
	db *sql.DB,
	seniors seniorLookup,
	verifications verificationUpserter,
	cfg config.VerificationConfig,
	opts ...VerificationOption,
) *VerificationEngine {
	length := cfg.CodeLength
	if length <= 0 {
		length = 6
	}
	engine := &VerificationEngine{
		db:            db,
		seniors:       seniors,
		verifications: verifications,
		codeLength:    length,
		codeTTL:       cfg.CodeTTL,
		generate:      RandomCode,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// RequestVerification replaces any pending code of the senior and returns the new one.
func (e *VerificationEngine) RequestVerification(ctx context.Context, seniorID uint64) (string, error) {
	senior, err := e.seniors.FindByID(ctx, seniorID)
	if err != nil {
		return "", persistenceError(err)
	}
	if senior == nil {
		return "", ErrNotFound
	}
	if senior.EmailVerified {
		return "", ErrAlreadyVerified
	}

	code, err := e.generate(e.codeLength)
	if err != nil {
		return "", err
	}

	err = e.verifications.Upsert(ctx, &entity.EmailVerification{
		SeniorID:  seniorID,
		Code:      code,
		CreatedAt: e.now(),
	})
	if err != nil {
		if repository.IsMissingReference(err) {
			return "", ErrNotFound
		}
		return "", persistenceError(err)
	}
	return code, nil
}

// Enroll inserts an unverified senior together with its first code in one transaction,
// so a failed code insert leaves no account behind. senior.ID is set on success.
func (e *VerificationEngine) Enroll(ctx context.Context, senior *entity.SeniorUser) (string, error) {
	code, err := e.generate(e.codeLength)
	if err != nil {
		return "", err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return "", persistenceError(err)
	}
	defer tx.Rollback()

	if err = repository.NewSeniorUserRepository(tx).Create(ctx, senior); err != nil {
		if repository.IsDuplicateEntry(err) {
			return "", ErrUserExists
		}
		return "", persistenceError(err)
	}

	err = repository.NewEmailVerificationRepository(tx).Upsert(ctx, &entity.EmailVerification{
		SeniorID:  senior.ID,
		Code:      code,
		CreatedAt: e.now(),
	})
	if err != nil {
		return "", persistenceError(err)
	}

	if err = tx.Commit(); err != nil {
		return "", persistenceError(err)
	}
	return code, nil
}

// Confirm consumes the pending code and marks the email verified in one transaction.
func (e *VerificationEngine) Confirm(ctx context.Context, seniorID uint64, code string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError(err)
	}
	defer tx.Rollback()

	txVerificationRepo := repository.NewEmailVerificationRepository(tx)
	pending, err := txVerificationRepo.FindBySeniorIDForUpdate(ctx, seniorID)
	if err != nil {
		return persistenceError(err)
	}
	if pending == nil {
		return ErrNoPendingVerification
	}

	if e.codeTTL > 0 && e.now().Sub(pending.CreatedAt) > e.codeTTL {
		return ErrVerificationExpired
	}

	submitted := strings.ToUpper(strings.TrimSpace(code))
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(pending.Code)) != 1 {
		logrus.WithField("senior_id", seniorID).Debug("verification code mismatch")
		return ErrCodeMismatch
	}

	if _, err = txVerificationRepo.DeleteBySeniorID(ctx, seniorID); err != nil {
		return persistenceError(err)
	}
	if _, err = repository.NewSeniorUserRepository(tx).MarkEmailVerified(ctx, seniorID, e.now()); err != nil {
		return persistenceError(err)
	}

	if err = tx.Commit(); err != nil {
		return persistenceError(err)
	}
	return nil
}

// RandomCode draws length characters uniformly from upper case letters and digits.
func RandomCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("code length must be positive")
	}
	limit := big.NewInt(int64(len(verificationAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(verificationAlphabet[n.Int64()])
	}
	return b.String(), nil
}
