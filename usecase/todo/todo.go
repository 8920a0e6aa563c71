package todo

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/repository"
)

// UseCase is the ownership-scoped todo service. Every operation takes the
// authenticated owner id; a todo is only visible to and mutable by its owner.
//
// Lookups, the ownership check and the write are separate store calls, so a
// concurrent request on the same todo can interleave between them.
type UseCase struct {
	todos    repository.TodoRepository
	validate *validator.Validate
	logger   *zap.Logger
}

func New(todos repository.TodoRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:    todos,
		validate: validator.New(),
		logger:   logger,
	}
}

func (uc *UseCase) Create(ctx context.Context, ownerID string, draft Draft) (*domain.Todo, error) {
	due, err := parseOptionalDate(draft.DueDate)
	if err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(draft.Title),
		Description: trimmed(draft.Description),
		DueDate:     due,
		Priority:    domain.PriorityMedium,
	}
	if draft.Completed != nil {
		todo.Completed = *draft.Completed
	}
	if draft.Priority != nil {
		todo.Priority = domain.Priority(*draft.Priority)
	}
	if err := validateTodo(uc.validate, todo); err != nil {
		return nil, err
	}

	created, err := uc.todos.Create(ctx, todo)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to create todo", err)
	}
	uc.logger.Info("todo created", zap.String("todo_id", created.ID), zap.String("owner_id", ownerID))
	return created, nil
}

func (uc *UseCase) List(ctx context.Context, ownerID string, query ListQuery) ([]domain.Todo, error) {
	filter, err := buildFilter(ownerID, query)
	if err != nil {
		return nil, err
	}
	todos, err := uc.todos.List(ctx, filter)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to list todos", err)
	}
	uc.logger.Debug("todos listed", zap.String("owner_id", ownerID), zap.Int("count", len(todos)))
	return todos, nil
}

func (uc *UseCase) Get(ctx context.Context, ownerID, id string) (*domain.Todo, error) {
	return uc.owned(ctx, ownerID, id)
}

// Replace overwrites every mutable field. An absent description becomes
// empty and an absent due date is cleared.
func (uc *UseCase) Replace(ctx context.Context, ownerID, id string, r Replacement) (*domain.Todo, error) {
	due, err := parseOptionalDate(r.DueDate)
	if err != nil {
		return nil, err
	}
	next := domain.Todo{
		Title:       strings.TrimSpace(r.Title),
		Description: trimmed(r.Description),
		DueDate:     due,
		Completed:   r.Completed,
		Priority:    domain.Priority(r.Priority),
	}
	if err := validateTodo(uc.validate, &next); err != nil {
		return nil, err
	}

	todo, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	todo.Title = next.Title
	todo.Description = next.Description
	todo.DueDate = next.DueDate
	todo.Completed = next.Completed
	todo.Priority = next.Priority

	if err := uc.save(ctx, todo); err != nil {
		return nil, err
	}
	uc.logger.Info("todo replaced", zap.String("todo_id", todo.ID), zap.String("owner_id", ownerID))
	return todo, nil
}

// Update applies only the fields present in patch.
func (uc *UseCase) Update(ctx context.Context, ownerID, id string, patch Patch) (*domain.Todo, error) {
	if patch.Empty() {
		return nil, domain.Validation("provide at least one field to update")
	}
	var due *string
	if patch.DueDateSet {
		due = patch.DueDate
	}
	dueDate, err := parseOptionalDate(due)
	if err != nil {
		return nil, err
	}

	todo, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		todo.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		todo.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.DueDateSet {
		todo.DueDate = dueDate
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		todo.Priority = domain.Priority(*patch.Priority)
	}
	if err := validateTodo(uc.validate, todo); err != nil {
		return nil, err
	}

	if err := uc.save(ctx, todo); err != nil {
		return nil, err
	}
	uc.logger.Info("todo updated", zap.String("todo_id", todo.ID), zap.String("owner_id", ownerID))
	return todo, nil
}

// Delete permanently removes the todo. A missing todo yields
// domain.ErrTodoNotFound.
func (uc *UseCase) Delete(ctx context.Context, ownerID, id string) error {
	todo, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := uc.todos.Delete(ctx, todo.ID); err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			return domain.ErrTodoNotFound
		}
		return domain.WrapError(domain.ErrCodeInternal, "failed to delete todo", err)
	}
	uc.logger.Info("todo deleted", zap.String("todo_id", todo.ID), zap.String("owner_id", ownerID))
	return nil
}

// owned loads the todo and checks it belongs to ownerID. A foreign todo is
// reported as forbidden, not hidden as missing.
func (uc *UseCase) owned(ctx context.Context, ownerID, id string) (*domain.Todo, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	todo, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load todo", err)
	}
	if !todo.OwnedBy(ownerID) {
		uc.logger.Warn("foreign todo access denied", zap.String("todo_id", id), zap.String("owner_id", ownerID))
		return nil, domain.ErrForbidden
	}
	return todo, nil
}

func (uc *UseCase) save(ctx context.Context, todo *domain.Todo) error {
	if err := uc.todos.Update(ctx, todo); err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			return domain.ErrTodoNotFound
		}
		return domain.WrapError(domain.ErrCodeInternal, "failed to update todo", err)
	}
	return nil
}
