package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPasswordPolicyValidate(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
	}

	if err := policy.Validate("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := policy.Validate("lowercase1!"); err == nil {
		t.Fatalf("expected error for missing uppercase")
	}
	if err := policy.Validate("UPPERCASE1!"); err == nil {
		t.Fatalf("expected error for missing lowercase")
	}
	if err := policy.Validate("NoNumber!"); err == nil {
		t.Fatalf("expected error for missing number")
	}
	if err := policy.Validate("NoSpecial1"); err == nil {
		t.Fatalf("expected error for missing special")
	}
	if err := policy.Validate("P@ssw0rd1"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := getEnv("MISSING_STRING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("TEST_SECONDS", "30")
	if got := getSecondsEnv("TEST_SECONDS", 5*time.Second); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
	t.Setenv("TEST_SECONDS", "invalid")
	if got := getSecondsEnv("TEST_SECONDS", 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected default duration, got %v", got)
	}
	t.Setenv("TEST_SECONDS", "-3")
	if got := getSecondsEnv("TEST_SECONDS", 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected default duration for negative value, got %v", got)
	}

	t.Setenv("TEST_BOOL", "true")
	if got := getBoolEnv("TEST_BOOL", false); got != true {
		t.Fatalf("expected true, got %v", got)
	}
	t.Setenv("TEST_BOOL", "invalid")
	if got := getBoolEnv("TEST_BOOL", true); got != true {
		t.Fatalf("expected default bool, got %v", got)
	}

	t.Setenv("TEST_INT", "42")
	if got := getIntEnv("TEST_INT", 5); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	t.Setenv("TEST_LIST", " a, ,b ,")
	got := getListEnv("TEST_LIST")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
	return tmp
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when MYSQL_DSN is missing")
	}
}

func TestLoadRequiresPublicKeyPath(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/mentor?parseTime=true")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when JWT_PUBLIC_KEY_PATH is missing")
	}
}

func TestLoadRequiresStateSecretWithProvider(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/mentor?parseTime=true")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
	t.Setenv("KAKAO_CLIENT_ID", "kakao-client")
	t.Setenv("OAUTH_STATE_SECRET", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when OAUTH_STATE_SECRET is missing")
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/mentor?parseTime=true")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWT.AccessTokenTTL != 1800*time.Second {
		t.Fatalf("expected default access ttl 1800s, got %v", cfg.JWT.AccessTokenTTL)
	}
	if cfg.JWT.RefreshTokenTTL != 31536000*time.Second {
		t.Fatalf("expected default refresh ttl 31536000s, got %v", cfg.JWT.RefreshTokenTTL)
	}
	if cfg.Verification.CodeLength != 6 || cfg.Verification.CodeTTL != 0 {
		t.Fatalf("unexpected verification defaults: %+v", cfg.Verification)
	}
	if cfg.OAuth.Google.Enabled() || cfg.OAuth.Kakao.Enabled() || cfg.OAuth.Naver.Enabled() {
		t.Fatalf("expected providers to be disabled without client ids")
	}
	if cfg.OAuth.Naver.TokenURI != "https://nid.naver.com/oauth2.0/token" {
		t.Fatalf("unexpected naver token uri: %s", cfg.OAuth.Naver.TokenURI)
	}
	if cfg.HTTP.Port != "8080" || cfg.GRPC.Port != "9090" {
		t.Fatalf("unexpected ports: %s %s", cfg.HTTP.Port, cfg.GRPC.Port)
	}
}

func TestLoadSuccess(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/mentor?parseTime=true")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "/keys/private.pem")
	t.Setenv("ACCESS_TOKEN_MAX_AGE", "60")
	t.Setenv("REFRESH_TOKEN_MAX_AGE", "3600")
	t.Setenv("OAUTH_TIMEOUT", "3")
	t.Setenv("OAUTH_STATE_SECRET", "state-secret")
	t.Setenv("GOOGLE_CLIENT_ID", "google-client")
	t.Setenv("GOOGLE_CLIENT_SECRET", "google-secret")
	t.Setenv("GOOGLE_REDIRECT_URI", "https://example.com/auth/google/callback")
	t.Setenv("VERIFICATION_CODE_TTL", "180")
	t.Setenv("INTERNAL_API_KEYS", "k1,k2")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWT.PrivateKeyPath != "/keys/private.pem" || cfg.JWT.PublicKeyPath != "/keys/public.pem" {
		t.Fatalf("unexpected key paths: %+v", cfg.JWT)
	}
	if cfg.JWT.AccessTokenTTL != time.Minute || cfg.JWT.RefreshTokenTTL != time.Hour {
		t.Fatalf("unexpected jwt ttl: %v %v", cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	}
	if cfg.OAuth.Timeout != 3*time.Second {
		t.Fatalf("unexpected oauth timeout: %v", cfg.OAuth.Timeout)
	}
	if !cfg.OAuth.Google.Enabled() || cfg.OAuth.Google.RedirectURI != "https://example.com/auth/google/callback" {
		t.Fatalf("unexpected google config: %+v", cfg.OAuth.Google)
	}
	if cfg.Verification.CodeTTL != 3*time.Minute {
		t.Fatalf("unexpected verification ttl: %v", cfg.Verification.CodeTTL)
	}
	if len(cfg.Internal.APIKeys) != 2 {
		t.Fatalf("unexpected internal keys: %#v", cfg.Internal.APIKeys)
	}
	if !cfg.SMTP.Enabled() || cfg.SMTP.Port != 2525 {
		t.Fatalf("unexpected smtp config: %+v", cfg.SMTP)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{MySQL: MySQLConfig{DSN: "user:pass@tcp(localhost:3306)/mentor?parseTime=true"}}
	if got := cfg.DSN(); got != cfg.MySQL.DSN {
		t.Fatalf("expected %q, got %q", cfg.MySQL.DSN, got)
	}
}

func TestLoadRespectsEnvFileLocation(t *testing.T) {
	tmp := chdirTemp(t)

	envPath := filepath.Join(tmp, ".env")
	content := "MYSQL_DSN=user:pass@tcp(localhost:3306)/mentor?parseTime=true\nJWT_PUBLIC_KEY_PATH=/env/public.pem\nHTTP_PORT=9099\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("write .env failed: %v", err)
	}
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "")
	t.Setenv("HTTP_PORT", "")
	os.Unsetenv("MYSQL_DSN")
	os.Unsetenv("JWT_PUBLIC_KEY_PATH")
	os.Unsetenv("HTTP_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWT.PublicKeyPath != "/env/public.pem" || cfg.HTTP.Port != "9099" {
		t.Fatalf("expected env file values, got %s %s", cfg.JWT.PublicKeyPath, cfg.HTTP.Port)
	}
}

func TestLoadRejectsVerificationCodeLength(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/mentor?parseTime=true")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")

	for _, value := range []string{"0", "-2", "17", "64"} {
		t.Setenv("VERIFICATION_CODE_LENGTH", value)
		if cfg, err := Load(); err == nil || cfg != nil {
			t.Fatalf("expected error for VERIFICATION_CODE_LENGTH=%s", value)
		}
	}

	t.Setenv("VERIFICATION_CODE_LENGTH", "16")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected 16 to be accepted: %v", err)
	}
	if cfg.Verification.CodeLength != MaxVerificationCodeLength {
		t.Fatalf("expected code length 16, got %d", cfg.Verification.CodeLength)
	}
}
