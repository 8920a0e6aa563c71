package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/infrastructure/boltdb"
	"github.com/fastygo/todos/pkg/security"
	"github.com/fastygo/todos/pkg/token"
	"github.com/fastygo/todos/repository"
	boltRepo "github.com/fastygo/todos/repository/bolt"
)

// testUseCase wires the auth use case over a BoltDB store in a temp dir.
func testUseCase(t *testing.T) (*UseCase, repository.UserRepository) {
	t.Helper()
	store, err := boltdb.Open(filepath.Join(t.TempDir(), "auth.db"), boltRepo.Buckets...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	issuer, err := token.NewIssuer("test-secret", "todos", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	users := boltRepo.NewUserRepository(store)
	return New(users, security.NewBcryptHasher(bcrypt.MinCost), issuer, nil), users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hashed password", func(t *testing.T) {
		uc, users := testUseCase(t)
		summary, err := uc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if summary.ID == "" || summary.Name != "A" || summary.Email != "a@x.com" {
			t.Fatalf("unexpected summary %+v", summary)
		}

		stored, err := users.GetByEmail(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if stored.PasswordHash == "" || strings.Contains(stored.PasswordHash, "secret1") {
			t.Fatalf("password stored in plaintext: %q", stored.PasswordHash)
		}
	})

	t.Run("accepts passwords longer than 72 bytes", func(t *testing.T) {
		uc, _ := testUseCase(t)
		long := strings.Repeat("p", 80)
		if _, err := uc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: long}); err != nil {
			t.Fatalf("register: %v (code %s)", err, domain.CodeOf(err))
		}
		res, err := uc.Login(ctx, LoginInput{Email: "a@x.com", Password: long})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if res.Token == "" {
			t.Fatal("expected a token")
		}
		if _, err := uc.Login(ctx, LoginInput{Email: "a@x.com", Password: strings.Repeat("p", 81)}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		uc, _ := testUseCase(t)
		if _, err := uc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}); err != nil {
			t.Fatalf("register: %v", err)
		}
		_, err := uc.Register(ctx, RegisterInput{Name: "B", Email: "a@x.com", Password: "other-password"})
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
		if domain.CodeOf(err) != domain.ErrCodeConflict {
			t.Fatalf("expected CONFLICT, got %s", domain.CodeOf(err))
		}
	})

	t.Run("email is case sensitive", func(t *testing.T) {
		uc, _ := testUseCase(t)
		if _, err := uc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}); err != nil {
			t.Fatalf("register: %v", err)
		}
		if _, err := uc.Register(ctx, RegisterInput{Name: "A", Email: "A@x.com", Password: "secret1"}); err != nil {
			t.Fatalf("register with different case: %v", err)
		}
	})

	invalid := []struct {
		name    string
		in      RegisterInput
		message string
	}{
		{"missing name", RegisterInput{Email: "a@x.com", Password: "secret1"}, "name, email and password are required"},
		{"missing email", RegisterInput{Name: "A", Password: "secret1"}, "name, email and password are required"},
		{"missing password", RegisterInput{Name: "A", Email: "a@x.com"}, "name, email and password are required"},
		{"malformed email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, "invalid email"},
		{"short password", RegisterInput{Name: "A", Email: "a@x.com", Password: "12345"}, "password must be at least 6 characters"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			uc, _ := testUseCase(t)
			_, err := uc.Register(ctx, tc.in)
			if domain.CodeOf(err) != domain.ErrCodeInvalid {
				t.Fatalf("expected INVALID, got %v", err)
			}
			if domain.MessageOf(err, "") != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, domain.MessageOf(err, ""))
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	uc, _ := testUseCase(t)
	registered, err := uc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		res, err := uc.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if res.User != *registered {
			t.Fatalf("expected %+v, got %+v", *registered, res.User)
		}
		ownerID, ok := uc.VerifyToken(res.Token)
		if !ok || ownerID != registered.ID {
			t.Fatalf("token resolved to %q (ok=%v), want %q", ownerID, ok, registered.ID)
		}
	})

	failures := []struct {
		name string
		in   LoginInput
	}{
		{"wrong password", LoginInput{Email: "a@x.com", Password: "secret2"}},
		{"unknown email", LoginInput{Email: "b@x.com", Password: "secret1"}},
		{"malformed email", LoginInput{Email: "a-at-x", Password: "secret1"}},
		{"empty password", LoginInput{Email: "a@x.com"}},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Login(ctx, tc.in)
			if domain.CodeOf(err) != domain.ErrCodeUnauthorized {
				t.Fatalf("expected UNAUTHORIZED, got %v", err)
			}
		})
	}

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, errUnknown := uc.Login(ctx, LoginInput{Email: "b@x.com", Password: "secret1"})
		_, errWrong := uc.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret2"})
		if errUnknown.Error() != errWrong.Error() {
			t.Fatalf("messages differ: %q vs %q", errUnknown, errWrong)
		}
	})
}

func TestVerifyToken(t *testing.T) {
	uc, _ := testUseCase(t)
	if _, ok := uc.VerifyToken("garbage"); ok {
		t.Fatal("garbage token verified")
	}
	if _, ok := uc.VerifyToken(""); ok {
		t.Fatal("empty token verified")
	}
}
