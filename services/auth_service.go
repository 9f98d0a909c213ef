package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is returned by register, login and the Google callback.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

// AuthService handles password accounts and token refresh.
type AuthService struct {
	users  repository.UserStore
	tokens *TokenIssuer
	cost   int
}

func NewAuthService(store *repository.Store, tokens *TokenIssuer) *AuthService {
	return &AuthService{users: store.Users, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, apierrors.Conflict("User already exists with this email")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.ByUsername(ctx, username); err == nil {
		return nil, apierrors.Conflict("Username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)
	user := &models.User{Email: email, Username: username, Password: &hashed}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.Conflict("User already exists with this email")
		}
		return nil, err
	}
	signupsTotal.WithLabelValues("password").Inc()

	return s.issue(user)
}

// Login fails with the same error for an unknown email, a wrong password and
// an account that has no password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.ByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !user.HasPassword() {
		return nil, apierrors.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(in.Password)); err != nil {
		return nil, apierrors.Unauthorized("Invalid credentials")
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, apierrors.Unauthorized("Invalid or expired refresh token")
	}
	user, err := s.users.ByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Unauthorized("User associated with token not found")
	}
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
