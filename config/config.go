package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP         ServerConfig
	GRPC         ServerConfig
	MySQL        MySQLConfig
	JWT          JWTConfig
	OAuth        OAuthConfig
	Verification VerificationConfig
	SMTP         SMTPConfig
	Password     PasswordConfig
	Internal     InternalConfig
	Log          LogConfig
	Cookie       CookieConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN string
}

type JWTConfig struct {
	PrivateKeyPath  string
	PublicKeyPath   string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type OAuthConfig struct {
	Timeout     time.Duration
	StateSecret string
	Google      OAuthProviderConfig
	Kakao       OAuthProviderConfig
	Naver       OAuthProviderConfig
}

// OAuthProviderConfig holds the endpoints and client credentials of one
// identity provider. A provider without a client id is disabled.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURI      string
	TokenURI     string
	UserDataURI  string
	RedirectURI  string
}

func (p OAuthProviderConfig) Enabled() bool {
	return p.ClientID != ""
}

// MaxVerificationCodeLength matches the width of email_verification.code.
const MaxVerificationCodeLength = 16

type VerificationConfig struct {
	CodeLength int
	CodeTTL    time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type PasswordConfig struct {
	Policy PasswordPolicy
}

type InternalConfig struct {
	APIKeys []string
}

type LogConfig struct {
	Level  string
	Format string
}

type CookieConfig struct {
	Secure bool
}

type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	publicKeyPath := os.Getenv("JWT_PUBLIC_KEY_PATH")
	if publicKeyPath == "" {
		return nil, errors.New("JWT_PUBLIC_KEY_PATH environment variable is required")
	}

	oauthCfg := OAuthConfig{
		Timeout:     getSecondsEnv("OAUTH_TIMEOUT", 10*time.Second),
		StateSecret: os.Getenv("OAUTH_STATE_SECRET"),
		Google: loadOAuthProvider("GOOGLE", OAuthProviderConfig{
			AuthURI:     "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURI:    "https://oauth2.googleapis.com/token",
			UserDataURI: "https://www.googleapis.com/oauth2/v2/userinfo",
		}),
		Kakao: loadOAuthProvider("KAKAO", OAuthProviderConfig{
			AuthURI:     "https://kauth.kakao.com/oauth/authorize",
			TokenURI:    "https://kauth.kakao.com/oauth/token",
			UserDataURI: "https://kapi.kakao.com/v2/user/me",
		}),
		Naver: loadOAuthProvider("NAVER", OAuthProviderConfig{
			AuthURI:     "https://nid.naver.com/oauth2.0/authorize",
			TokenURI:    "https://nid.naver.com/oauth2.0/token",
			UserDataURI: "https://openapi.naver.com/v1/nid/me",
		}),
	}
	if oauthCfg.anyEnabled() && oauthCfg.StateSecret == "" {
		return nil, errors.New("OAUTH_STATE_SECRET environment variable is required when an oauth provider is configured")
	}

	codeLength := getIntEnv("VERIFICATION_CODE_LENGTH", 6)
	if codeLength < 1 || codeLength > MaxVerificationCodeLength {
		return nil, fmt.Errorf("VERIFICATION_CODE_LENGTH must be between 1 and %d, got %d", MaxVerificationCodeLength, codeLength)
	}

	return &Config{
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{DSN: mysqlDSN},
		JWT: JWTConfig{
			PrivateKeyPath:  os.Getenv("JWT_PRIVATE_KEY_PATH"),
			PublicKeyPath:   publicKeyPath,
			Issuer:          getEnv("JWT_ISSUER", "mentor-auth"),
			AccessTokenTTL:  getSecondsEnv("ACCESS_TOKEN_MAX_AGE", 1800*time.Second),
			RefreshTokenTTL: getSecondsEnv("REFRESH_TOKEN_MAX_AGE", 31536000*time.Second),
		},
		OAuth: oauthCfg,
		Verification: VerificationConfig{
			CodeLength: codeLength,
			CodeTTL:    getSecondsEnv("VERIFICATION_CODE_TTL", 0),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getIntEnv("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		},
		Password: PasswordConfig{Policy: loadPasswordPolicy()},
		Internal: InternalConfig{APIKeys: getListEnv("INTERNAL_API_KEYS")},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Cookie: CookieConfig{Secure: getBoolEnv("COOKIE_SECURE", true)},
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQL.DSN
}

func (o OAuthConfig) anyEnabled() bool {
	return o.Google.Enabled() || o.Kakao.Enabled() || o.Naver.Enabled()
}

func loadOAuthProvider(prefix string, defaults OAuthProviderConfig) OAuthProviderConfig {
	return OAuthProviderConfig{
		ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
		ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
		AuthURI:      getEnv(prefix+"_AUTH_URI", defaults.AuthURI),
		TokenURI:     getEnv(prefix+"_TOKEN_URI", defaults.TokenURI),
		UserDataURI:  getEnv(prefix+"_USER_DATA_URI", defaults.UserDataURI),
		RedirectURI:  os.Getenv(prefix + "_REDIRECT_URI"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 8),
		RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", true),
		RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", true),
		RequireNumber:    getBoolEnv("PASSWORD_REQUIRE_NUMBER", true),
		RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", true),
	}
}
