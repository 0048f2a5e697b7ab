package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/security"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	testKeysOnce sync.Once
	testKeys     *security.KeyPair
	otherKeys    *security.KeyPair
	testKeysErr  error
)

func loadTestKeys(t *testing.T) (*security.KeyPair, *security.KeyPair) {
	t.Helper()

	testKeysOnce.Do(func() {
		if testKeys, testKeysErr = security.GenerateKeyPair(2048); testKeysErr != nil {
			return
		}
		otherKeys, testKeysErr = security.GenerateKeyPair(2048)
	})
	if testKeysErr != nil {
		t.Fatalf("generate keys failed: %v", testKeysErr)
	}
	return testKeys, otherKeys
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { _ = db.Close() }
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sessionKey struct {
	kind entity.AccountKind
	id   uint64
}

// memorySessions behaves like the account tables' refresh_token column.
type memorySessions struct {
	mu     sync.Mutex
	tokens map[sessionKey]sql.NullString
	err    error
}

func newMemorySessions(accounts ...sessionKey) *memorySessions {
	s := &memorySessions{tokens: make(map[sessionKey]sql.NullString)}
	for _, key := range accounts {
		s.tokens[key] = sql.NullString{}
	}
	return s
}

func (s *memorySessions) SetRefreshToken(_ context.Context, kind entity.AccountKind, id uint64, token string, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	key := sessionKey{kind, id}
	if _, ok := s.tokens[key]; !ok {
		return false, nil
	}
	s.tokens[key] = sql.NullString{String: token, Valid: true}
	return true, nil
}

func (s *memorySessions) SwapRefreshToken(_ context.Context, kind entity.AccountKind, id uint64, current, next string, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	key := sessionKey{kind, id}
	stored, ok := s.tokens[key]
	if !ok || !stored.Valid || stored.String != current {
		return false, nil
	}
	s.tokens[key] = sql.NullString{String: next, Valid: true}
	return true, nil
}

func (s *memorySessions) ClearRefreshToken(_ context.Context, kind entity.AccountKind, id uint64, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	key := sessionKey{kind, id}
	if _, ok := s.tokens[key]; !ok {
		return false, nil
	}
	s.tokens[key] = sql.NullString{}
	return true, nil
}

func (s *memorySessions) stored(kind entity.AccountKind, id uint64) sql.NullString {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[sessionKey{kind, id}]
}

// captureArg matches any string argument and remembers it for later rows.
type captureArg struct {
	value string
}

func (c *captureArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if ok {
		c.value = s
	}
	return ok
}

type staticNicknames string

func (n staticNicknames) Next() string {
	return string(n)
}

func seniorRow(id uint64, email, hash string, verified bool, now time.Time) []driver.Value {
	return []driver.Value{
		id, email, hash, "Kim", "010-1234-5678", "kim", "CS", 5, 30000,
		"backend lead", "hello", nil, verified, now, now,
	}
}

var seniorUserColumns = []string{
	"id", "email", "password", "name", "phone", "nickname", "major", "experience_years",
	"mentoring_price", "representative_careers", "description", "refresh_token",
	"email_verified", "created_at", "updated_at",
}
