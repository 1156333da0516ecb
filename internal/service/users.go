package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"mercadito/internal/cache"
	apperrors "mercadito/internal/errors"
	"mercadito/internal/logger"
	"mercadito/internal/models"
	"mercadito/internal/repository"
)

type UserService struct {
	users  *repository.UserRepository
	valkey *cache.ValkeyClient
}

func NewUserService(users *repository.UserRepository, valkey *cache.ValkeyClient) *UserService {
	return &UserService{users: users, valkey: valkey}
}

func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrEmailTaken
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: HashPassword(req.Password),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Warm the auth cache; a failure only costs one DB lookup later
	if s.valkey != nil {
		if err := s.valkey.StoreUserAuth(ctx, user.Email, user.PasswordHash, user.UserID); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache user auth", "error", err, "user_id", user.UserID)
		}
	}

	return &models.RegisterResponse{UserID: user.UserID, Email: user.Email}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}
