package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
)

type SeniorUserRepository struct {
	db DBTX
}

func NewSeniorUserRepository(db DBTX) *SeniorUserRepository {
	return &SeniorUserRepository{db: db}
}

func (r *SeniorUserRepository) Create(ctx context.Context, user *entity.SeniorUser) error {
	query := `
		INSERT INTO senior_users (email, password, name, phone, nickname, major, experience_years,
			mentoring_price, representative_careers, description, email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Nickname,
		user.Major,
		user.ExperienceYears,
		user.MentoringPrice,
		user.RepresentativeCareers,
		user.Description,
		user.EmailVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *SeniorUserRepository) FindByEmail(ctx context.Context, email string) (*entity.SeniorUser, error) {
	query := `
		SELECT id, email, password, name, phone, nickname, major, experience_years, mentoring_price,
		       representative_careers, description, refresh_token, email_verified, created_at, updated_at
		FROM senior_users WHERE email = ?
	`
	return r.findOne(ctx, query, email)
}

func (r *SeniorUserRepository) FindByID(ctx context.Context, id uint64) (*entity.SeniorUser, error) {
	query := `
		SELECT id, email, password, name, phone, nickname, major, experience_years, mentoring_price,
		       representative_careers, description, refresh_token, email_verified, created_at, updated_at
		FROM senior_users WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *SeniorUserRepository) MarkEmailVerified(ctx context.Context, id uint64, now time.Time) (int64, error) {
	query := `UPDATE senior_users SET email_verified = TRUE, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteByID removes the account. Its pending verification is removed by the foreign key.
func (r *SeniorUserRepository) DeleteByID(ctx context.Context, id uint64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM senior_users WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *SeniorUserRepository) findOne(ctx context.Context, query string, args ...any) (*entity.SeniorUser, error) {
	user := &entity.SeniorUser{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&user.Nickname,
		&user.Major,
		&user.ExperienceYears,
		&user.MentoringPrice,
		&user.RepresentativeCareers,
		&user.Description,
		&user.RefreshToken,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
