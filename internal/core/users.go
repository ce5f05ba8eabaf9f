package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Sign-up field limits
const (
	MinEmailLength     = 5
	MinFirstNameLength = 4
	MinPasswordLength  = 8
)

// UserService registers and authenticates web interface accounts
type UserService struct {
	repo   UserRepository
	cost   int
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, cost: bcrypt.DefaultCost, logger: logger}
}

// SignUp validates the form fields and creates the account
func (s *UserService) SignUp(ctx context.Context, email, firstName, password, confirm string) (*User, error) {
	email = strings.TrimSpace(email)
	firstName = strings.TrimSpace(firstName)

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := ValidateSignUp(email, firstName, password, confirm); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{Email: email, FirstName: firstName, PasswordHash: string(hash)}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Created user", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Authenticate returns the user matching the email and password
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

// Get returns the user with the given ID
func (s *UserService) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// ValidateSignUp checks the sign-up form fields
func ValidateSignUp(email, firstName, password, confirm string) error {
	switch {
	case len(email) < MinEmailLength:
		return fmt.Errorf("%w: email must be at least %d characters", ErrInvalidSignUp, MinEmailLength)
	case len(firstName) < MinFirstNameLength:
		return fmt.Errorf("%w: first name must be at least %d characters", ErrInvalidSignUp, MinFirstNameLength)
	case password != confirm:
		return fmt.Errorf("%w: the passwords do not match", ErrInvalidSignUp)
	case len(password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignUp, MinPasswordLength)
	}
	return nil
}
