package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coursehive/course-auction/internal/db"
	"github.com/coursehive/course-auction/internal/model"
)

type Userrepo struct {
	db *db.DB
}

func NewUserrepo(db *db.DB) *Userrepo {
	return &Userrepo{
		db: db,
	}
}

func (ur *Userrepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
		SELECT
			u.id,
			u.email,
			u.username,
			u.password,
			u.created_at,
			u.updated_at
		FROM users u
		WHERE u.email = $1
		LIMIT 1;
	`
	return ur.scanUser(ctx, q, email)
}

func (ur *Userrepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
		SELECT
			u.id,
			u.email,
			u.username,
			u.password,
			u.created_at,
			u.updated_at
		FROM users u
		WHERE u.username = $1
		LIMIT 1;
	`
	return ur.scanUser(ctx, q, username)
}

func (ur *Userrepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
		SELECT
			u.id,
			u.email,
			u.username,
			u.password,
			u.created_at,
			u.updated_at
		FROM users u
		WHERE u.id = $1
		LIMIT 1;
	`
	return ur.scanUser(ctx, q, id)
}

func (ur *Userrepo) CreateUser(ctx context.Context, email, username, password string) (uuid.UUID, error) {
	const q = `
		INSERT INTO users (
			email,
			username,
			password,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id;
	`

	var userID uuid.UUID
	if err := ur.db.QueryRow(ctx, q, email, username, password).Scan(&userID); err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

func (ur *Userrepo) scanUser(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User

	err := ur.db.QueryRow(ctx, q, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}
