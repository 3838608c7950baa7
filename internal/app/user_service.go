package app

import (
	"context"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ResolveSession maps the auth id carried by a session token to the user
// directory entry.
func (s *UserService) ResolveSession(ctx context.Context, authID string) (*model.User, error) {
	if authID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListOthers returns every user except userID, for starting direct messages.
func (s *UserService) ListOthers(ctx context.Context, userID string) ([]model.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.userRepo.ListExcept(ctx, userID)
}
