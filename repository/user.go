package repository

import (
	"context"

	"github.com/fastygo/todos/domain"
)

// UserRepository is the credential store. Create must reject a duplicate email
// with domain.ErrEmailTaken.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
