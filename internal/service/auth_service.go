package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/FiveXSeven/synergies/internal/auth"
	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/repository"
	"github.com/FiveXSeven/synergies/internal/sanitize"
)

const bcryptCost = 10

// AuthService handles account creation, credential verification and session
// issuance.
type AuthService interface {
	Register(ctx context.Context, email, pin, name string) (*model.User, string, error)
	Login(ctx context.Context, email, pin string) (*model.User, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	sanitizer  *sanitize.Sanitizer
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, sanitizer *sanitize.Sanitizer) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		sanitizer:  sanitizer,
	}
}

// Register creates a new user with a hashed PIN and mints a session token.
// A duplicate email fails with the same generic error as a bad login, so
// registration cannot be used to probe for accounts.
func (s *authService) Register(ctx context.Context, email, pin, name string) (*model.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apierrors.ErrInvalidCredentials
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPIN, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash pin: %w", err)
	}

	if name == "" {
		// Default display name is the local part of the email.
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &model.User{
		ID:      uuid.New(),
		Email:   email,
		PINHash: string(hashedPIN),
		Name:    s.sanitizer.CleanTrimmed(name),
		Role:    model.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong PIN fail identically.
func (s *authService) Login(ctx context.Context, email, pin string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", apierrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		return nil, "", apierrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// GetUser resolves a user by id.
func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
