package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"

	"golang.org/x/crypto/bcrypt"
)

func newSeniorWithPassword(t *testing.T, id uint64, email, password string) *entity.SeniorUser {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return &entity.SeniorUser{ID: id, Email: email, PasswordHash: string(hash)}
}

func TestCredentialVerifier_Verify(t *testing.T) {
	seniors := newMemorySeniors(newSeniorWithPassword(t, 3, "a@x.com", "P@ssw0rd1"))
	verifier := service.NewCredentialVerifier(seniors)

	id, err := verifier.Verify(context.Background(), "  A@X.com ", "P@ssw0rd1")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if id != 3 {
		t.Fatalf("expected id 3, got %d", id)
	}
}

func TestCredentialVerifier_FailuresAreIndistinguishable(t *testing.T) {
	seniors := newMemorySeniors(newSeniorWithPassword(t, 3, "a@x.com", "P@ssw0rd1"))
	verifier := service.NewCredentialVerifier(seniors)
	ctx := context.Background()

	_, wrongPassword := verifier.Verify(ctx, "a@x.com", "wrong")
	_, unknownEmail := verifier.Verify(ctx, "nobody@x.com", "P@ssw0rd1")

	if !errors.Is(wrongPassword, service.ErrInvalidCredentials) || !errors.Is(unknownEmail, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v and %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("expected identical messages, got %q and %q", wrongPassword, unknownEmail)
	}
}

func TestCredentialVerifier_StoreFailure(t *testing.T) {
	seniors := newMemorySeniors()
	seniors.err = errors.New("connection reset")
	verifier := service.NewCredentialVerifier(seniors)

	if _, err := verifier.Verify(context.Background(), "a@x.com", "P@ssw0rd1"); !errors.Is(err, service.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
