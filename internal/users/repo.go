package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repo interface {
	// Upsert creates or refreshes an OAuth identity. It never touches the
	// password hash.
	Upsert(ctx context.Context, user User) error
	// Create inserts a new password account; ErrEmailTaken if the email exists.
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
