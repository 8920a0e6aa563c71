package bolt

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/infrastructure/boltdb"
	"github.com/fastygo/todos/repository"
)

type todoRepository struct {
	store *boltdb.Store
}

// NewTodoRepository returns a BoltDB-backed implementation of TodoRepository.
func NewTodoRepository(store *boltdb.Store) repository.TodoRepository {
	return &todoRepository{store: store}
}

func (r *todoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var todo domain.Todo
	err := r.store.View(func(tx *bbolt.Tx) error {
		return getTodo(tx, id, &todo)
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) List(ctx context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	todos := make([]domain.Todo, 0)
	err := r.store.View(func(tx *bbolt.Tx) error {
		return boltdb.ForEach(tx, todosBucket, func(todo *domain.Todo) error {
			if filter.Matches(todo) {
				todos = append(todos, *todo)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}

	err := r.store.Update(func(tx *bbolt.Tx) error {
		now := time.Now().UTC()
		todo.CreatedAt = now
		todo.UpdatedAt = now
		return boltdb.Put(tx, todosBucket, todo.ID, todo)
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Update overwrites every mutable field. The stored owner and creation time
// are kept regardless of what todo carries.
func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.store.Update(func(tx *bbolt.Tx) error {
		var stored domain.Todo
		if err := getTodo(tx, todo.ID, &stored); err != nil {
			return err
		}

		todo.OwnerID = stored.OwnerID
		todo.CreatedAt = stored.CreatedAt
		todo.UpdatedAt = time.Now().UTC()
		return boltdb.Put(tx, todosBucket, todo.ID, todo)
	})
}

func (r *todoRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Update(func(tx *bbolt.Tx) error {
		existed, err := boltdb.Delete(tx, todosBucket, id)
		if err != nil {
			return err
		}
		if !existed {
			return domain.ErrTodoNotFound
		}
		return nil
	})
}

func getTodo(tx *bbolt.Tx, id string, out *domain.Todo) error {
	if err := boltdb.Get(tx, todosBucket, id, out); err != nil {
		if errors.Is(err, boltdb.ErrNotFound) {
			return domain.ErrTodoNotFound
		}
		return err
	}
	return nil
}
