package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"filemanager/internal/domain"
	"filemanager/internal/repository"
)

type tokenIssuer interface {
	GenerateToken(userID int64, username string) (string, error)
}

// Service contains account registration and login logic.
type Service struct {
	users               *repository.UserRepository
	jwt                 tokenIssuer
	defaultStorageLimit int64
}

func NewService(users *repository.UserRepository, jwt tokenIssuer, defaultStorageLimit int64) *Service {
	return &Service{users: users, jwt: jwt, defaultStorageLimit: defaultStorageLimit}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
		Nickname:     req.Nickname,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Status:       domain.UserActive,
		StorageLimit: s.defaultStorageLimit,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.Status == domain.UserDisabled {
		return nil, "", ErrUserDisabled
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
