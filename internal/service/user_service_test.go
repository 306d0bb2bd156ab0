package service

import (
	"context"
	"io"
	"testing"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserServiceCreate(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, &logger)

		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, err := svc.Create(ctx, models.User{Name: "alice", Email: "alice@example.com"})
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
		repo.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, &logger)

		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(database.ErrDuplicateEmail).Once()

		_, err := svc.Create(ctx, models.User{Name: "bob", Email: "alice@example.com"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestUserServiceUpdate(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("PatchName", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, &logger)
		name := "alice smith"

		repo.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Name: "alice", Email: "alice@example.com"}, nil).Once()
		repo.On("UpdateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, err := svc.Update(ctx, 1, models.UserPatch{Name: &name})
		assert.NoError(t, err)
		assert.Equal(t, "alice smith", user.Name)
		assert.Equal(t, "alice@example.com", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("EmailTakenByOther", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, &logger)
		email := "bob@example.com"

		repo.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Email: "alice@example.com"}, nil).Once()
		repo.On("OtherUserWithEmailExists", ctx, int64(1), email).Return(true, nil).Once()

		_, err := svc.Update(ctx, 1, models.UserPatch{Email: &email})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("SameEmailIsFine", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, &logger)
		email := "alice@example.com"

		repo.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Email: email}, nil).Once()
		repo.On("UpdateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		_, err := svc.Update(ctx, 1, models.UserPatch{Email: &email})
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "OtherUserWithEmailExists")
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, &logger)

		repo.On("GetUser", ctx, int64(99)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Update(ctx, 99, models.UserPatch{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserServiceDelete(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	repo := new(mockRepo)
	svc := NewUserService(repo, &logger)

	repo.On("DeleteUser", ctx, int64(1)).Return(nil).Once()
	repo.On("DeleteUser", ctx, int64(99)).Return(database.ErrNotFound).Once()

	assert.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 99), ErrNotFound)
	repo.AssertExpectations(t)
}
