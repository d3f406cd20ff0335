package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"shopbe/internal/models"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, rt *models.RefreshToken) error
	GetWithUserRole(ctx context.Context, token string) (*models.RefreshToken, error)
	// Delete reports whether a row was actually removed; a false return on a
	// valid signature means the token was already rotated or revoked.
	Delete(ctx context.Context, token string) (bool, error)
	DeleteByUser(ctx context.Context, userID int) error
}

type refreshTokenRepository struct {
	DB *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) RefreshTokenRepository {
	return &refreshTokenRepository{DB: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, rt *models.RefreshToken) error {
	const q = `
		INSERT INTO refresh_tokens (token, user_id, device_id, expires_at)
		VALUES ($1,$2,$3,$4)
	`
	if _, err := r.DB.ExecContext(ctx, q, rt.Token, rt.UserID, rt.DeviceID, rt.ExpiresAt); err != nil {
		return fmt.Errorf("refresh_token create: %w", err)
	}
	return nil
}

// GetWithUserRole joins the owning user and role so rotation can mint the next
// access token without extra lookups.
func (r *refreshTokenRepository) GetWithUserRole(ctx context.Context, token string) (*models.RefreshToken, error) {
	const q = `
		SELECT rt.token, rt.user_id, rt.device_id, rt.expires_at,
		       u.id, u.email, u.name, u.role_id,
		       r.id, r.name
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		JOIN roles r ON r.id = u.role_id
		WHERE rt.token = $1
	`
	rt := &models.RefreshToken{User: &models.User{Role: &models.Role{}}}
	err := r.DB.QueryRowContext(ctx, q, token).Scan(
		&rt.Token, &rt.UserID, &rt.DeviceID, &rt.ExpiresAt,
		&rt.User.ID, &rt.User.Email, &rt.User.Name, &rt.User.RoleID,
		&rt.User.Role.ID, &rt.User.Role.Name,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("refresh_token get: %w", err)
	}
	return rt, nil
}

func (r *refreshTokenRepository) Delete(ctx context.Context, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token=$1`, token)
	if err != nil {
		return false, fmt.Errorf("refresh_token delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("refresh_token delete rows: %w", err)
	}
	return n > 0, nil
}

// DeleteByUser revokes every outstanding refresh token, forcing re-login on
// all devices. Used after a password reset.
func (r *refreshTokenRepository) DeleteByUser(ctx context.Context, userID int) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("refresh_token delete by user: %w", err)
	}
	return nil
}
