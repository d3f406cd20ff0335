package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"shopbe/internal/models"
)

type DeviceRepository interface {
	Create(ctx context.Context, userID int, userAgent, ip string) (*models.Device, error)
	Update(ctx context.Context, deviceID int, userAgent, ip string) error
}

type deviceRepository struct {
	DB *sql.DB
}

func NewDeviceRepository(db *sql.DB) DeviceRepository {
	return &deviceRepository{DB: db}
}

// Create inserts a fresh device row. Logins are not deduplicated by
// fingerprint; every login gets its own row.
func (r *deviceRepository) Create(ctx context.Context, userID int, userAgent, ip string) (*models.Device, error) {
	const q = `
		INSERT INTO devices (user_id, user_agent, ip, last_active, is_active)
		VALUES ($1,$2,$3,NOW(),TRUE)
		RETURNING id, user_id, user_agent, ip, last_active, is_active
	`
	d := &models.Device{}
	err := r.DB.QueryRowContext(ctx, q, userID, userAgent, ip).Scan(
		&d.ID, &d.UserID, &d.UserAgent, &d.IP, &d.LastActive, &d.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("device create: %w", err)
	}
	return d, nil
}

func (r *deviceRepository) Update(ctx context.Context, deviceID int, userAgent, ip string) error {
	const q = `
		UPDATE devices
		SET user_agent=$1, ip=$2, last_active=NOW()
		WHERE id=$3
	`
	if _, err := r.DB.ExecContext(ctx, q, userAgent, ip, deviceID); err != nil {
		return fmt.Errorf("device update: %w", err)
	}
	return nil
}
