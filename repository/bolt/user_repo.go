package bolt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/infrastructure/boltdb"
	"github.com/fastygo/todos/repository"
)

const (
	usersBucket  = "users"
	emailsBucket = "users_by_email"
	todosBucket  = "todos"
)

// Buckets lists every bucket the repositories in this package need.
var Buckets = []string{usersBucket, emailsBucket, todosBucket}

type userRepository struct {
	store *boltdb.Store
}

// NewUserRepository creates a BoltDB-backed user repository. Email
// uniqueness is kept by a secondary index bucket written in the same
// transaction as the user document.
func NewUserRepository(store *boltdb.Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user domain.User
	err := r.store.View(func(tx *bbolt.Tx) error {
		return getUser(tx, id, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user domain.User
	err := r.store.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(emailsBucket)).Get([]byte(email))
		if raw == nil {
			return domain.ErrUserNotFound
		}
		return getUser(tx, string(raw), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	return r.store.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket([]byte(emailsBucket))
		if emails.Get([]byte(user.Email)) != nil {
			return domain.ErrEmailTaken
		}

		now := time.Now().UTC()
		user.CreatedAt = now
		user.UpdatedAt = now

		if err := boltdb.Put(tx, usersBucket, user.ID, userDocument(user)); err != nil {
			return err
		}
		return emails.Put([]byte(user.Email), []byte(user.ID))
	})
}

// userDoc is the stored shape. domain.User hides the hash from JSON, so the
// document carries it explicitly.
type userDoc struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func userDocument(u *domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func getUser(tx *bbolt.Tx, id string, out *domain.User) error {
	var doc userDoc
	if err := boltdb.Get(tx, usersBucket, id, &doc); err != nil {
		if errors.Is(err, boltdb.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	*out = domain.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	return nil
}
