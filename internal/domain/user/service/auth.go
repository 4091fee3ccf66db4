package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/domain/user/dao"
	"github.com/expertraah/marketplace-api/internal/domain/user/entity"
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// TokenIssuer issues signed session tokens
type TokenIssuer interface {
	Issue(userID uuid.UUID, accountType string) (string, error)
}

// AuthService handles registration, login and password changes
type AuthService struct {
	users  UserRepository
	tokens TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(users UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// RegisterInput represents input for registering an account
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	AccountType entity.AccountType
	Phone       string
}

// AuthOutput is the result of a successful register or login
type AuthOutput struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// Register provisions a new account and issues a session token. Consultant
// profile creation is a separate verification step.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthOutput, error) {
	if in.Name == "" || in.Email == "" {
		return nil, apperror.InvalidArgument("name and email are required")
	}
	if len(in.Password) < 6 {
		return nil, apperror.InvalidArgument("password must be at least 6 characters")
	}
	if !entity.ValidAccountType(in.AccountType) {
		return nil, apperror.InvalidArgument("account type must be buyer or consultant")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		AccountType:  in.AccountType,
		Phone:        in.Phone,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, dao.ErrDuplicateEmail) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, string(user.AccountType))
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &AuthOutput{User: user, Token: token}, nil
}

// Login validates credentials and issues a session token. A missing account
// and a wrong password are indistinguishable to callers.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthOutput, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if user.IsBanned {
		return nil, apperror.PermissionDenied("account is banned")
	}

	token, err := s.tokens.Issue(user.ID, string(user.AccountType))
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &AuthOutput{User: user, Token: token}, nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < 6 {
		return apperror.InvalidArgument("password must be at least 6 characters")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("getting user: %w", err)
	}
	if user == nil {
		return apperror.NotFound("user not found")
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return apperror.Unauthenticated("current password is incorrect")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}
