package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"shopbe/internal/models"
)

type VerificationCodeRepository interface {
	Upsert(ctx context.Context, vc *models.VerificationCode) error
	Find(ctx context.Context, email, code, codeType string) (*models.VerificationCode, error)
}

type verificationCodeRepository struct {
	DB *sql.DB
}

func NewVerificationCodeRepository(db *sql.DB) VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

// Upsert keeps the one-row-per-email invariant: a resend overwrites the
// previous code and pushes the expiry forward.
func (r *verificationCodeRepository) Upsert(ctx context.Context, vc *models.VerificationCode) error {
	const q = `
		INSERT INTO verification_codes (email, code, type, expires_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, type = EXCLUDED.type, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.DB.ExecContext(ctx, q, vc.Email, vc.Code, vc.Type, vc.ExpiresAt); err != nil {
		return fmt.Errorf("verification_code upsert: %w", err)
	}
	return nil
}

// Find matches on the full (email, code, type) triple; a wrong code is
// indistinguishable from no code at all.
func (r *verificationCodeRepository) Find(ctx context.Context, email, code, codeType string) (*models.VerificationCode, error) {
	const q = `
		SELECT email, code, type, expires_at
		FROM verification_codes
		WHERE email = $1 AND code = $2 AND type = $3
	`
	vc := &models.VerificationCode{}
	err := r.DB.QueryRowContext(ctx, q, email, code, codeType).Scan(&vc.Email, &vc.Code, &vc.Type, &vc.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("verification_code find: %w", err)
	}
	return vc, nil
}
