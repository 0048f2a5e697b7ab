package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
)

type EmailVerificationRepository struct {
	db DBTX
}

func NewEmailVerificationRepository(db DBTX) *EmailVerificationRepository {
	return &EmailVerificationRepository{db: db}
}

// Upsert replaces the pending code of the senior; the unique senior_id keeps a single row.
func (r *EmailVerificationRepository) Upsert(ctx context.Context, v *entity.EmailVerification) error {
	query := `
		INSERT INTO email_verification (senior_id, code, created_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE code = VALUES(code), created_at = VALUES(created_at)
	`
	_, err := r.db.ExecContext(ctx, query, v.SeniorID, v.Code, v.CreatedAt)
	return err
}

func (r *EmailVerificationRepository) FindBySeniorIDForUpdate(ctx context.Context, seniorID uint64) (*entity.EmailVerification, error) {
	query := `
		SELECT id, senior_id, code, created_at
		FROM email_verification WHERE senior_id = ? FOR UPDATE
	`
	v := &entity.EmailVerification{}
	err := r.db.QueryRowContext(ctx, query, seniorID).Scan(
		&v.ID,
		&v.SeniorID,
		&v.Code,
		&v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *EmailVerificationRepository) DeleteBySeniorID(ctx context.Context, seniorID uint64) (int64, error) {
	query := `DELETE FROM email_verification WHERE senior_id = ?`
	result, err := r.db.ExecContext(ctx, query, seniorID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
