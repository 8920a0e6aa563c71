package repository

import (
	"context"
	"strings"
	"time"

	"github.com/fastygo/todos/domain"
)

// TodoFilter narrows a listing. OwnerID is mandatory; every other field is
// optional and the set is combined with logical AND.
type TodoFilter struct {
	OwnerID   string
	Completed *bool
	Priority  domain.Priority
	Title     string
	DueFrom   *time.Time
	DueTo     *time.Time
}

// Matches reports whether todo satisfies the filter. Stores that cannot push
// the predicate down to the backend evaluate it with this method.
func (f TodoFilter) Matches(todo *domain.Todo) bool {
	if todo == nil || todo.OwnerID != f.OwnerID {
		return false
	}
	if f.Completed != nil && todo.Completed != *f.Completed {
		return false
	}
	if f.Priority != "" && todo.Priority != f.Priority {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(todo.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.DueFrom != nil || f.DueTo != nil {
		if todo.DueDate == nil {
			return false
		}
		if f.DueFrom != nil && todo.DueDate.Before(*f.DueFrom) {
			return false
		}
		if f.DueTo != nil && todo.DueDate.After(*f.DueTo) {
			return false
		}
	}
	return true
}

// TodoRepository is the task store. List returns todos newest-created first.
// Update and Delete return domain.ErrTodoNotFound when the id is unknown.
type TodoRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Todo, error)
	List(ctx context.Context, filter TodoFilter) ([]domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id string) error
}
