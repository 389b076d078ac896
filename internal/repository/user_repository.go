package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

// UserRepository manages staff account persistence.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, full_name, role, active, last_login, created_at, updated_at"

// FindByEmail fetches an account by email for login.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE LOWER(email) = LOWER($1)", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID fetches an account by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &user, nil
}

// Create inserts an account and returns it with stamped fields.
func (r *UserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	const query = `INSERT INTO users (id, email, password_hash, full_name, role, active)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Role, user.Active,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// TouchLastLogin stamps the account's login time.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = NOW() WHERE id = $1", id); err != nil {
		return fmt.Errorf("touch last login for %s: %w", id, err)
	}
	return nil
}
