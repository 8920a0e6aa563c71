package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/repository"
)

const todoColumns = `id::text, owner_id::text, title, description, due_date, completed, priority, created_at, updated_at`

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	return scanTodo(r.pool.QueryRow(ctx, query, id))
}

func (r *todoRepository) List(ctx context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	query := `
	SELECT ` + todoColumns + `
	FROM todos
	WHERE owner_id = $1
	  AND ($2::boolean IS NULL OR completed = $2)
	  AND ($3 = '' OR priority = $3)
	  AND ($4 = '' OR title ILIKE $4)
	  AND ($5::timestamptz IS NULL OR due_date >= $5)
	  AND ($6::timestamptz IS NULL OR due_date <= $6)
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query,
		filter.OwnerID,
		filter.Completed,
		string(filter.Priority),
		containsPattern(filter.Title),
		nullTime(filter.DueFrom),
		nullTime(filter.DueTo),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO todos (id, owner_id, title, description, due_date, completed, priority)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		todo.ID,
		todo.OwnerID,
		todo.Title,
		todo.Description,
		nullTime(todo.DueDate),
		todo.Completed,
		string(todo.Priority),
	).Scan(&todo.CreatedAt, &todo.UpdatedAt); err != nil {
		return nil, err
	}

	return todo, nil
}

// Update overwrites every mutable column. owner_id is never written.
func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE todos
	SET title = $2,
		description = $3,
		due_date = $4,
		completed = $5,
		priority = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		todo.ID,
		todo.Title,
		todo.Description,
		nullTime(todo.DueDate),
		todo.Completed,
		string(todo.Priority),
	).Scan(&todo.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTodoNotFound
		}
		return err
	}

	return nil
}

func (r *todoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM todos WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var (
		todo     domain.Todo
		due      *time.Time
		priority string
	)

	if err := row.Scan(
		&todo.ID,
		&todo.OwnerID,
		&todo.Title,
		&todo.Description,
		&due,
		&todo.Completed,
		&priority,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}

	todo.DueDate = due
	todo.Priority = domain.Priority(priority)
	return &todo, nil
}
