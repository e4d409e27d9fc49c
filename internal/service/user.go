package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"clinic-api/internal/model"
	"clinic-api/internal/shared"
)

// TokenIssuer signs an access token for a user id. *token.Manager
// implements it.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username string
	Password string
	Nickname string
	Email    string
}

// Credentials carries a login attempt.
type Credentials struct {
	Username string
	Password string
}

// UserService handles accounts and authentication.
type UserService struct {
	tx     TxManager
	users  UserStore
	tokens TokenIssuer
}

// NewUserService creates a UserService.
func NewUserService(tx TxManager, users UserStore, tokens TokenIssuer) *UserService {
	return &UserService{tx: tx, users: users, tokens: tokens}
}

// Register creates an account. A taken username is UserAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, shared.Errorf(shared.ParameterError, "username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.E(shared.InternalServerError).WithCause(err)
	}

	var created *model.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.E(shared.UserAlreadyExists)
		}
		created, err = s.users.Create(ctx, &model.User{
			Username:     username,
			PasswordHash: string(hash),
			Nickname:     strings.TrimSpace(in.Nickname),
			Email:        strings.TrimSpace(in.Email),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies credentials and returns a signed access token. A missing
// user and a wrong password report the same InvalidCredentials kind.
func (s *UserService) Login(ctx context.Context, creds Credentials) (string, *model.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		return "", nil, err
	}
	if user == nil || user.Disabled {
		return "", nil, shared.E(shared.InvalidCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return "", nil, shared.E(shared.InvalidCredentials)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, shared.E(shared.InternalServerError).WithCause(err)
	}
	return tok, user, nil
}

// Me returns the account behind an authenticated request.
func (s *UserService) Me(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.E(shared.UserNotFound)
	}
	return user, nil
}
