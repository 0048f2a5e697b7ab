package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

func NewRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewOAuthState returns a random state value bound to the provider and signed with secret.
func NewOAuthState(provider, secret string) (string, error) {
	nonce, err := NewRandomString(24)
	if err != nil {
		return "", err
	}
	return SignState(provider+":"+nonce, secret), nil
}

func SignState(state, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(state))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return state + "." + sig
}

func VerifySignedState(raw, secret string) (string, bool) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 {
		return "", false
	}
	expected := SignState(parts[0], secret)
	if !hmac.Equal([]byte(expected), []byte(raw)) {
		return "", false
	}
	return parts[0], true
}

// VerifyOAuthState checks the state echoed by the provider against the one stored in the
// browser cookie and confirms it was issued for provider.
func VerifyOAuthState(echoed, stored, provider, secret string) bool {
	if echoed == "" || !hmac.Equal([]byte(echoed), []byte(stored)) {
		return false
	}
	state, ok := VerifySignedState(echoed, secret)
	if !ok {
		return false
	}
	return strings.HasPrefix(state, provider+":")
}
