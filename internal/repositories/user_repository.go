package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"shopbe/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmailWithRole(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

// Create inserts the user and fills in ID and timestamps. A unique violation
// on users.email is returned as-is; callers detect it with IsUniqueViolation.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (email, name, phone_number, password, role_id, avatar)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, q,
		user.Email,
		user.Name,
		user.PhoneNumber,
		user.Password,
		user.RoleID,
		user.Avatar,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	const q = `
		SELECT id, email, name, phone_number, password, role_id, avatar, totp_secret, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.DB.QueryRowContext(ctx, q, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, name, phone_number, password, role_id, avatar, totp_secret, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.DB.QueryRowContext(ctx, q, email))
}

// GetByEmailWithRole joins roles so login can put the role name into the
// access token without a second round trip.
func (r *userRepository) GetByEmailWithRole(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT u.id, u.email, u.name, u.phone_number, u.password, u.role_id,
		       u.avatar, u.totp_secret, u.created_at, u.updated_at,
		       r.id, r.name
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1
	`
	u := &models.User{Role: &models.Role{}}
	var avatar, totp sql.NullString
	err := r.DB.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.PhoneNumber, &u.Password, &u.RoleID,
		&avatar, &totp, &u.CreatedAt, &u.UpdatedAt,
		&u.Role.ID, &u.Role.Name,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user get by email with role: %w", err)
	}
	if avatar.Valid {
		s := avatar.String
		u.Avatar = &s
	}
	if totp.Valid {
		s := totp.String
		u.TOTPSecret = &s
	}
	return u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	const q = `
		UPDATE users
		SET password=$1, updated_at=NOW()
		WHERE id=$2
	`
	if _, err := r.DB.ExecContext(ctx, q, passwordHash, userID); err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var avatar, totp sql.NullString
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PhoneNumber, &u.Password, &u.RoleID,
		&avatar, &totp, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	if avatar.Valid {
		s := avatar.String
		u.Avatar = &s
	}
	if totp.Valid {
		s := totp.String
		u.TOTPSecret = &s
	}
	return u, nil
}
