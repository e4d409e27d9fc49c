package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"clinic-api/internal/model"
)

// UserRepo persists API accounts.
type UserRepo struct {
	db DB
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, password_hash, coalesce(nickname, ''),
	coalesce(email, ''), disabled, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Nickname,
		&u.Email, &u.Disabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user or nil when absent.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetByUsername returns the user or nil when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// Create inserts a user. A username collision surfaces as the database's
// unique constraint violation.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (*model.User, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO users (username, password_hash, nickname, email)
		VALUES ($1, $2, nullif($3, ''), nullif($4, ''))
		RETURNING `+userColumns,
		u.Username, u.PasswordHash, u.Nickname, u.Email)
	return scanUser(row)
}
