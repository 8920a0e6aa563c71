package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/config"
	pgInfra "github.com/fastygo/todos/internal/infrastructure/postgres"
	"github.com/fastygo/todos/repository"
)

// testPool connects to TEST_DATABASE_URL, applies the migrations and empties the tables.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{
		Store:      config.StoreConfig{Driver: config.DriverPostgres},
		Database:   config.DatabaseConfig{URL: url, Name: "todos_test"},
		Migrations: config.MigrationsConfig{Enabled: true, Path: "../../assets/migrations"},
	}
	if err := pgInfra.RunMigrations(cfg, nil); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	ctx := context.Background()
	pool, err := pgInfra.NewPool(ctx, cfg.Database, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "TRUNCATE todos, users"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool(t))

	user := &domain.User{Name: "A", Email: "a@x.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uuid.Parse(user.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", user.ID)
	}

	got, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil || got.ID != user.ID || got.PasswordHash != "hash" {
		t.Fatalf("get by email: %+v %v", got, err)
	}
	if _, err := repo.GetByEmail(ctx, "A@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("emails must match case-sensitively, got %v", err)
	}
	if err := repo.Create(ctx, &domain.User{Name: "B", Email: "a@x.com", PasswordHash: "x"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTodoRepository(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	users := NewUserRepository(pool)
	repo := NewTodoRepository(pool)

	owner := &domain.User{Name: "A", Email: "a@x.com", PasswordHash: "hash"}
	if err := users.Create(ctx, owner); err != nil {
		t.Fatalf("create user: %v", err)
	}

	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	milk, err := repo.Create(ctx, &domain.Todo{OwnerID: owner.ID, Title: "Buy 100% milk", Priority: domain.PriorityHigh, Completed: true, DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	dog, err := repo.Create(ctx, &domain.Todo{OwnerID: owner.ID, Title: "Walk dog", Priority: domain.PriorityLow})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	yes := true
	cases := []struct {
		name   string
		filter repository.TodoFilter
		want   []string
	}{
		{"all newest first", repository.TodoFilter{OwnerID: owner.ID}, []string{dog.ID, milk.ID}},
		{"completed", repository.TodoFilter{OwnerID: owner.ID, Completed: &yes}, []string{milk.ID}},
		{"title literal percent", repository.TodoFilter{OwnerID: owner.ID, Title: "100%"}, []string{milk.ID}},
		{"title wildcard is literal", repository.TodoFilter{OwnerID: owner.ID, Title: "_"}, nil},
		{"due range", repository.TodoFilter{OwnerID: owner.ID, DueFrom: &due, DueTo: &due}, []string{milk.ID}},
		{"other owner", repository.TodoFilter{OwnerID: uuid.NewString()}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d todos, got %d", len(tc.want), len(got))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}

	dog.Title = "Walk the dog"
	dog.OwnerID = uuid.NewString()
	if err := repo.Update(ctx, dog); err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, err := repo.GetByID(ctx, dog.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Walk the dog" || stored.OwnerID != owner.ID {
		t.Fatalf("unexpected stored todo %+v", stored)
	}

	if err := repo.Delete(ctx, dog.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, dog.ID); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}
