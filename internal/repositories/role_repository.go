package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"shopbe/internal/models"
)

type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Ensure(ctx context.Context, name string) (*models.Role, error)
}

type roleRepository struct {
	DB *sql.DB
}

func NewRoleRepository(db *sql.DB) RoleRepository {
	return &roleRepository{DB: db}
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	const q = `SELECT id, name FROM roles WHERE name = $1`
	role := &models.Role{}
	if err := r.DB.QueryRowContext(ctx, q, name).Scan(&role.ID, &role.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("role get by name: %w", err)
	}
	return role, nil
}

// Ensure creates the role if missing and returns it either way. Used by the
// startup bootstrap; idempotent.
func (r *roleRepository) Ensure(ctx context.Context, name string) (*models.Role, error) {
	const q = `
		INSERT INTO roles (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	role := &models.Role{}
	if err := r.DB.QueryRowContext(ctx, q, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, fmt.Errorf("role ensure: %w", err)
	}
	return role, nil
}
