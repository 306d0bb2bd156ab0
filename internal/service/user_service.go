package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Create(ctx context.Context, user models.User) (*models.User, error) {
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, fmt.Errorf("email %q is already in use: %w", user.Email, ErrDuplicateEmail)
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("user with id=%d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetAll(ctx context.Context, page *models.Page) ([]models.User, error) {
	return s.repo.GetAllUsers(ctx, page)
}

// Update меняет только переданные поля. Email проверяется на уникальность
// среди остальных пользователей до записи.
func (s *UserService) Update(ctx context.Context, userID int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != user.Email {
		taken, err := s.repo.OtherUserWithEmailExists(ctx, userID, *patch.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("email %q is already in use: %w", *patch.Email, ErrDuplicateEmail)
		}
		user.Email = *patch.Email
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, fmt.Errorf("email %q is already in use: %w", user.Email, ErrDuplicateEmail)
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("user with id=%d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("user with id=%d: %w", userID, ErrNotFound)
		}
		return err
	}
	s.logger.Info().Int64("user_id", userID).Msg("user deleted")
	return nil
}
