// Package users is the read-only view of the identity collaborator: enough
// to authenticate a request and address an order-confirmation email.
// Registration, login and password storage live outside this service.
package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"isActive"`
}

type Store interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx,
		`SELECT id, username, email, COALESCE(phone,''), is_active FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
