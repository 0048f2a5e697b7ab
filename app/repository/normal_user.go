package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
)

type NormalUserRepository struct {
	db DBTX
}

func NewNormalUserRepository(db DBTX) *NormalUserRepository {
	return &NormalUserRepository{db: db}
}

// UpsertOAuth inserts the federated identity unless (oauth_provider, oauth_id) already exists.
// Either way user.ID ends up holding the id of the surviving row; created is false when
// another request won the insert.
func (r *NormalUserRepository) UpsertOAuth(ctx context.Context, user *entity.NormalUser) (bool, error) {
	query := `
		INSERT INTO normal_users (oauth_provider, oauth_id, nickname, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
	`
	result, err := r.db.ExecContext(ctx, query,
		string(user.OAuthProvider),
		user.OAuthID,
		user.Nickname,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return false, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	user.ID = uint64(id)
	return affected == 1, nil
}

func (r *NormalUserRepository) FindByOAuth(ctx context.Context, provider entity.OAuthProvider, oauthID string) (*entity.NormalUser, error) {
	query := `
		SELECT id, oauth_provider, oauth_id, nickname, refresh_token, created_at, updated_at
		FROM normal_users WHERE oauth_provider = ? AND oauth_id = ?
	`
	return r.findOne(ctx, query, string(provider), oauthID)
}

func (r *NormalUserRepository) FindByID(ctx context.Context, id uint64) (*entity.NormalUser, error) {
	query := `
		SELECT id, oauth_provider, oauth_id, nickname, refresh_token, created_at, updated_at
		FROM normal_users WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *NormalUserRepository) DeleteByID(ctx context.Context, id uint64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM normal_users WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *NormalUserRepository) findOne(ctx context.Context, query string, args ...any) (*entity.NormalUser, error) {
	user := &entity.NormalUser{}
	var provider string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&provider,
		&user.OAuthID,
		&user.Nickname,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.OAuthProvider = entity.OAuthProvider(provider)
	return user, nil
}
