package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

// ProfileInput is a partial update. An empty string clears the field.
type ProfileInput struct {
	Phone  *string `json:"phone" binding:"omitempty,max=32"`
	Avatar *string `json:"avatar"`
}

type UserService struct {
	users repository.UserStore
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{users: store.Users}
}

func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Phone != nil {
		u.Phone = emptyToNil(strings.TrimSpace(*in.Phone))
	}
	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		if avatar != "" && !validAvatar(avatar) {
			return nil, apierrors.Field("avatar", "avatar must be an http(s) URL or a data:image URI")
		}
		u.Avatar = emptyToNil(avatar)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

func validAvatar(s string) bool {
	if strings.HasPrefix(s, "data:image/") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
