package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidInternalAPIKey = errors.New("invalid internal api key")

const defaultInternalServiceName = "internal"

type InternalAuthService interface {
	ValidateInternalAPIKey(ctx context.Context, apiKey string) (string, error)
}

type internalAPIKey struct {
	serviceName string
	hash        [sha256.Size]byte
}

type internalAuthService struct {
	keys []internalAPIKey
}

// NewInternalAuthService accepts entries of the form "service=key" or a bare key.
// Only hashes of the keys are retained.
func NewInternalAuthService(entries []string) InternalAuthService {
	svc := &internalAuthService{}
	for _, entry := range entries {
		serviceName, rawKey := defaultInternalServiceName, strings.TrimSpace(entry)
		if name, key, ok := strings.Cut(rawKey, "="); ok {
			serviceName, rawKey = strings.TrimSpace(name), strings.TrimSpace(key)
		}
		if rawKey == "" {
			continue
		}
		svc.keys = append(svc.keys, internalAPIKey{
			serviceName: serviceName,
			hash:        sha256.Sum256([]byte(rawKey)),
		})
	}
	return svc
}

// ValidateInternalAPIKey returns the name of the calling service owning apiKey.
func (s *internalAuthService) ValidateInternalAPIKey(_ context.Context, apiKey string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrInvalidInternalAPIKey
	}

	sum := sha256.Sum256([]byte(apiKey))
	matched := ""
	for _, key := range s.keys {
		if subtle.ConstantTimeCompare(sum[:], key.hash[:]) == 1 {
			matched = key.serviceName
		}
	}
	if matched == "" {
		return "", ErrInvalidInternalAPIKey
	}
	return matched, nil
}

func GenerateInternalAPIKey() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return "msint_" + hex.EncodeToString(secret), nil
}
