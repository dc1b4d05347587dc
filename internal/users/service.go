package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lawexam-backend/internal/shared/auth"
	"lawexam-backend/internal/shared/telemetry"
)

// Service handles registration, login and profile lookup.
type Service struct {
	repo      Repo
	jwtSecret string
	jwtTTL    time.Duration
}

func NewService(repo Repo, jwtSecret string, jwtTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < 8 {
		return User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:               uuid.NewString(),
		Email:            email,
		HashedPassword:   string(hashed),
		FullName:         strings.TrimSpace(fullName),
		SubscriptionType: "free",
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	telemetry.L().Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, err
	}
	if !user.IsActive {
		return "", User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := auth.Sign(s.jwtSecret, s.jwtTTL, user.ID, user.Email)
	if err != nil {
		return "", User{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		telemetry.L().Warn().Err(err).Str("user_id", user.ID).Msg("update last login failed")
	}
	return token, user, nil
}

// Me returns the profile for the given user ID.
func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	return s.repo.GetByID(ctx, userID)
}
