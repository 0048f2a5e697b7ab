package entity

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// AccountKind separates the two account tables. Ids are only unique within a kind.
type AccountKind string

const (
	AccountKindNormal AccountKind = "normal"
	AccountKindSenior AccountKind = "senior"
)

func ParseAccountKind(value string) (AccountKind, error) {
	switch kind := AccountKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case AccountKindNormal, AccountKindSenior:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown account kind %q", value)
	}
}

type OAuthProvider string

const (
	OAuthProviderGoogle OAuthProvider = "google"
	OAuthProviderKakao  OAuthProvider = "kakao"
	OAuthProviderNaver  OAuthProvider = "naver"
)

func ParseOAuthProvider(value string) (OAuthProvider, error) {
	switch provider := OAuthProvider(strings.ToLower(strings.TrimSpace(value))); provider {
	case OAuthProviderGoogle, OAuthProviderKakao, OAuthProviderNaver:
		return provider, nil
	default:
		return "", fmt.Errorf("unknown oauth provider %q", value)
	}
}

type NormalUser struct {
	ID            uint64
	OAuthProvider OAuthProvider
	OAuthID       string
	Nickname      string
	RefreshToken  sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SeniorUser struct {
	ID                    uint64
	Email                 string
	PasswordHash          string
	Name                  string
	Phone                 string
	Nickname              string
	Major                 string
	ExperienceYears       int
	MentoringPrice        uint32
	RepresentativeCareers string
	Description           string
	RefreshToken          sql.NullString
	EmailVerified         bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
