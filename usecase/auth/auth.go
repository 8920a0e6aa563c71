package auth

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/repository"
)

const minPasswordLength = 6

// PasswordHasher produces salted one-way hashes and verifies them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// TokenIssuer mints and verifies bearer tokens bound to a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (userID string, ok bool)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  domain.UserSummary
}

type UseCase struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	validate *validator.Validate
	logger   *zap.Logger
}

func New(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register validates the input, rejects a known email and stores a new user
// with a hashed password.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.UserSummary, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		uc.logger.Warn("registration rejected: missing fields")
		return nil, domain.Validation("name, email and password are required")
	}
	if !uc.validEmail(in.Email) {
		uc.logger.Warn("registration rejected: invalid email", zap.String("email", in.Email))
		return nil, domain.Validation("invalid email")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		uc.logger.Warn("registration rejected: short password")
		return nil, domain.Validation("password must be at least 6 characters")
	}

	_, err := uc.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		uc.logger.Warn("registration rejected: email taken", zap.String("email", in.Email))
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to register user", err)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to register user", err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to register user", err)
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	summary := user.Summary()
	return &summary, nil
}

// Login verifies the credentials and issues a token. Every credential
// failure yields the same error so callers cannot tell which part was wrong.
func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "email and password are required")
	}
	if !uc.validEmail(in.Email) {
		uc.logger.Warn("login rejected: invalid email", zap.String("email", in.Email))
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.logger.Warn("login rejected: unknown email", zap.String("email", in.Email))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to login", err)
	}
	if !uc.hasher.Verify(in.Password, user.PasswordHash) {
		uc.logger.Warn("login rejected: wrong password", zap.String("email", in.Email))
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to login", err)
	}

	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return &LoginResult{Token: tok, User: user.Summary()}, nil
}

// VerifyToken resolves the owner id carried by tok. It is a pure query.
func (uc *UseCase) VerifyToken(tok string) (string, bool) {
	return uc.tokens.Verify(tok)
}

func (uc *UseCase) validEmail(email string) bool {
	return uc.validate.Var(email, "email") == nil
}
