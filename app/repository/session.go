package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
)

// SessionRepository stores the single current refresh token on the owning account row.
type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// SetRefreshToken overwrites the stored value. It reports false when the account does not exist.
func (r *SessionRepository) SetRefreshToken(ctx context.Context, kind entity.AccountKind, id uint64, token string, now time.Time) (bool, error) {
	table, err := accountTable(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET refresh_token = ?, updated_at = ? WHERE id = ?`, table)
	return r.exec(ctx, query, token, now, id)
}

// SwapRefreshToken replaces current with next in one statement. It reports false when the
// stored value is no longer current, which is how a superseded token is detected.
func (r *SessionRepository) SwapRefreshToken(ctx context.Context, kind entity.AccountKind, id uint64, current, next string, now time.Time) (bool, error) {
	table, err := accountTable(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET refresh_token = ?, updated_at = ? WHERE id = ? AND refresh_token = ?`, table)
	return r.exec(ctx, query, next, now, id, current)
}

// ClearRefreshToken drops the stored value. Clearing an already empty session succeeds;
// it reports false only when the account does not exist.
func (r *SessionRepository) ClearRefreshToken(ctx context.Context, kind entity.AccountKind, id uint64, now time.Time) (bool, error) {
	table, err := accountTable(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET refresh_token = NULL, updated_at = ? WHERE id = ?`, table)
	cleared, err := r.exec(ctx, query, now, id)
	if err != nil || cleared {
		return cleared, err
	}

	// MySQL counts changed rows, so a row that already held NULL and the same updated_at reports 0.
	var one int
	err = r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, table), id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SessionRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func accountTable(kind entity.AccountKind) (string, error) {
	switch kind {
	case entity.AccountKindNormal:
		return "normal_users", nil
	case entity.AccountKindSenior:
		return "senior_users", nil
	default:
		return "", fmt.Errorf("unknown account kind %q", kind)
	}
}
