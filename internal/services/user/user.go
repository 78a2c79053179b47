// Package services содержит бизнес-логику управления профилями пользователей
// и их адресными книгами.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/repository"
)

// ErrUserNotFound возвращается, если пользователь с указанным UID не существует.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameTaken возвращается, если имя уже занято другим пользователем.
var ErrUsernameTaken = errors.New("username is already taken")

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// ListUsersByRole возвращает пользователей с указанной ролью.
	ListUsersByRole(ctx context.Context, role string) ([]*models.User, error)
	// UpdateUsername меняет имя пользователя, если оно свободно.
	UpdateUsername(ctx context.Context, userUID, username string) (int, error)
	// RemoveUser удаляет пользователя и возвращает количество удалённых строк.
	RemoveUser(ctx context.Context, userUID string) (int, error)
	// ListAddresses возвращает адресную книгу пользователя.
	ListAddresses(ctx context.Context, userUID string) ([]*models.Address, error)
	// UpsertAddress сохраняет адрес, заменяя прежний с той же меткой.
	UpsertAddress(ctx context.Context, a models.Address) (string, error)
	// RemoveAddress удаляет адрес пользователя.
	RemoveAddress(ctx context.Context, userUID, addressID string) (int, error)
}

// UserService реализует просмотр и редактирование профилей.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
	}
}

// List возвращает всех пользователей, либо только пользователей
// с указанной ролью, если она задана.
func (s *UserService) List(ctx context.Context, role string) ([]*models.User, error) {
	if role != "" {
		return s.repo.ListUsersByRole(ctx, role)
	}
	return s.repo.ListUsers(ctx)
}

// Get возвращает профиль пользователя вместе с адресной книгой.
func (s *UserService) Get(ctx context.Context, userUID string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	addresses, err := s.repo.ListAddresses(ctx, userUID)
	if err != nil {
		return nil, err
	}
	user.Addresses = addresses
	return user, nil
}

// Update применяет изменения профиля. Имя меняется, только если свободно;
// адреса объединяются с существующими по метке. Email, роль и пароль этим
// запросом не изменяются.
func (s *UserService) Update(ctx context.Context, userUID string, req models.DummyUserUpdate) (*models.User, error) {
	if req.Username != "" {
		count, err := s.repo.UpdateUsername(ctx, userUID, req.Username)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			if _, err := s.repo.GetUser(ctx, userUID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrUserNotFound
				}
				return nil, err
			}
			return nil, ErrUsernameTaken
		}
	}

	for _, addr := range req.Addresses {
		if _, err := s.repo.UpsertAddress(ctx, models.Address{
			UserUID:    userUID,
			Label:      addr.Label,
			Street:     addr.Street,
			City:       addr.City,
			PostalCode: addr.PostalCode,
		}); err != nil {
			return nil, err
		}
	}

	s.log.Info("updated user profile", slog.String("uid", userUID))
	return s.Get(ctx, userUID)
}

// Remove удаляет пользователя вместе с его адресами и правами доступа.
func (s *UserService) Remove(ctx context.Context, userUID string) error {
	count, err := s.repo.RemoveUser(ctx, userUID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	s.log.Info("removed user", slog.String("uid", userUID))
	return nil
}

// RemoveAddress удаляет один адрес из адресной книги пользователя.
func (s *UserService) RemoveAddress(ctx context.Context, userUID, addressID string) error {
	count, err := s.repo.RemoveAddress(ctx, userUID, addressID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
