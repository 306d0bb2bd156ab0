package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestItemServiceCreate(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, nil)

		repo.On("UserExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("CreateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil).Once()

		item, err := svc.Create(ctx, 5, models.Item{Name: "drill", Description: "hammer drill", Available: true})
		assert.NoError(t, err)
		assert.Equal(t, int64(5), item.OwnerID)
		repo.AssertExpectations(t)
	})

	t.Run("WithRequest", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, nil)
		requestID := int64(3)

		repo.On("UserExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("GetRequest", ctx, requestID).Return(&models.ItemRequest{ID: requestID}, nil).Once()
		repo.On("CreateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil).Once()

		_, err := svc.Create(ctx, 5, models.Item{Name: "drill", Available: true, RequestID: &requestID})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, nil)
		requestID := int64(404)

		repo.On("UserExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("GetRequest", ctx, requestID).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Create(ctx, 5, models.Item{Name: "drill", Available: true, RequestID: &requestID})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, nil)

		repo.On("UserExists", ctx, int64(99)).Return(false, nil).Once()

		_, err := svc.Create(ctx, 99, models.Item{Name: "drill", Available: true})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemServiceUpdate(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("PartialPatch", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, nil)
		name := "drill 2000"
		available := false

		repo.On("UserExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("GetItemByIDAndOwner", ctx, int64(2), int64(5)).
			Return(&models.Item{ID: 2, Name: "drill", Description: "old", Available: true, OwnerID: 5}, nil).Once()
		repo.On("UpdateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil).Once()

		item, err := svc.Update(ctx, 5, 2, models.ItemPatch{Name: &name, Available: &available})
		assert.NoError(t, err)
		assert.Equal(t, "drill 2000", item.Name)
		assert.Equal(t, "old", item.Description)
		assert.False(t, item.Available)
		repo.AssertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, nil)

		repo.On("UserExists", ctx, int64(7)).Return(true, nil).Once()
		repo.On("GetItemByIDAndOwner", ctx, int64(2), int64(7)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Update(ctx, 7, 2, models.ItemPatch{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemServiceGetByID(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	bookings := []models.Booking{
		{ID: 1, ItemID: 2, BookerID: 3, Start: now.Add(-72 * time.Hour), Status: models.StatusApproved},
		{ID: 2, ItemID: 2, BookerID: 4, Start: now.Add(-24 * time.Hour), Status: models.StatusApproved},
		{ID: 3, ItemID: 2, BookerID: 3, Start: now.Add(24 * time.Hour), Status: models.StatusApproved},
		{ID: 4, ItemID: 2, BookerID: 4, Start: now.Add(72 * time.Hour), Status: models.StatusApproved},
	}

	t.Run("OwnerSeesLastAndNext", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		repo.On("UserExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("GetItem", ctx, int64(2)).Return(&models.Item{ID: 2, OwnerID: 5}, nil).Once()
		repo.On("GetApprovedBookingsForItem", ctx, int64(2), int64(5)).Return(bookings, nil).Once()
		repo.On("GetCommentsByItem", ctx, int64(2)).Return([]models.Comment{{ID: 1, Text: "good"}}, nil).Once()

		details, err := svc.GetByID(ctx, 5, 2)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), details.LastBooking.ID)
		assert.Equal(t, int64(3), details.NextBooking.ID)
		assert.Len(t, details.Comments, 1)
		repo.AssertExpectations(t)
	})

	t.Run("NonOwnerGetsNoBookings", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		repo.On("UserExists", ctx, int64(3)).Return(true, nil).Once()
		repo.On("GetItem", ctx, int64(2)).Return(&models.Item{ID: 2, OwnerID: 5}, nil).Once()
		repo.On("GetApprovedBookingsForItem", ctx, int64(2), int64(3)).Return([]models.Booking{}, nil).Once()
		repo.On("GetCommentsByItem", ctx, int64(2)).Return([]models.Comment{}, nil).Once()

		details, err := svc.GetByID(ctx, 3, 2)
		assert.NoError(t, err)
		assert.Nil(t, details.LastBooking)
		assert.Nil(t, details.NextBooking)
		assert.NotNil(t, details.Comments)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		repo.On("UserExists", ctx, int64(3)).Return(true, nil).Once()
		repo.On("GetItem", ctx, int64(404)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.GetByID(ctx, 3, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLastNextBooking(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, lastBooking(nil, now))
		assert.Nil(t, nextBooking(nil, now))
	})

	t.Run("AllInFuture", func(t *testing.T) {
		bookings := []models.Booking{
			{ID: 1, Start: now.Add(time.Hour)},
			{ID: 2, Start: now.Add(2 * time.Hour)},
		}
		assert.Nil(t, lastBooking(bookings, now))
		assert.Equal(t, int64(1), nextBooking(bookings, now).ID)
	})

	t.Run("AllInPast", func(t *testing.T) {
		bookings := []models.Booking{
			{ID: 1, Start: now.Add(-2 * time.Hour)},
			{ID: 2, Start: now.Add(-time.Hour)},
		}
		assert.Equal(t, int64(2), lastBooking(bookings, now).ID)
		assert.Nil(t, nextBooking(bookings, now))
	})

	t.Run("StartingExactlyNowIsLast", func(t *testing.T) {
		bookings := []models.Booking{{ID: 1, Start: now}}
		assert.Equal(t, int64(1), lastBooking(bookings, now).ID)
		assert.Nil(t, nextBooking(bookings, now))
	})
}

func TestItemServiceGetAllByOwner(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("GroupsByItem", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		items := []models.Item{{ID: 1, OwnerID: 5}, {ID: 2, OwnerID: 5}}
		bookings := []models.Booking{
			{ID: 10, ItemID: 1, Start: now.Add(-time.Hour), Status: models.StatusApproved},
			{ID: 11, ItemID: 2, Start: now.Add(time.Hour), Status: models.StatusApproved},
		}
		comments := []models.Comment{{ID: 20, ItemID: 2, Text: "ok"}}

		repo.On("UserExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("GetItemsByOwner", ctx, int64(5), (*models.Page)(nil)).Return(items, nil).Once()
		repo.On("GetApprovedBookingsByOwner", ctx, int64(5)).Return(bookings, nil).Once()
		repo.On("GetCommentsByItems", ctx, []int64{1, 2}).Return(comments, nil).Once()

		details, err := svc.GetAllByOwner(ctx, 5, nil)
		assert.NoError(t, err)
		assert.Len(t, details, 2)

		assert.Equal(t, int64(10), details[0].LastBooking.ID)
		assert.Nil(t, details[0].NextBooking)
		assert.Empty(t, details[0].Comments)

		assert.Nil(t, details[1].LastBooking)
		assert.Equal(t, int64(11), details[1].NextBooking.ID)
		assert.Len(t, details[1].Comments, 1)
		repo.AssertExpectations(t)
	})

	t.Run("NoItems", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		repo.On("UserExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("GetItemsByOwner", ctx, int64(5), (*models.Page)(nil)).Return([]models.Item{}, nil).Once()

		_, err := svc.GetAllByOwner(ctx, 5, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemServiceSearch(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	repo := new(mockRepo)
	svc := NewItemService(repo, &logger, nil)

	items, err := svc.Search(ctx, "", nil)
	assert.NoError(t, err)
	assert.Empty(t, items)
	repo.AssertNotCalled(t, "SearchItems")

	repo.On("SearchItems", ctx, "drill", (*models.Page)(nil)).Return([]models.Item{{ID: 1}}, nil).Once()
	items, err = svc.Search(ctx, "drill", nil)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	repo.AssertExpectations(t)
}

func TestItemServiceAddComment(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		repo.On("UserExists", ctx, int64(3)).Return(true, nil).Once()
		repo.On("CommentExists", ctx, int64(2), int64(3)).Return(false, nil).Once()
		repo.On("HasFinishedBooking", ctx, int64(2), int64(3), now).Return(true, nil).Once()
		repo.On("CreateComment", ctx, mock.AnythingOfType("*models.Comment")).Return(nil).Once()

		comment, err := svc.AddComment(ctx, 3, 2, "worked well")
		assert.NoError(t, err)
		assert.Equal(t, now, comment.Created)
		assert.Equal(t, int64(3), comment.AuthorID)
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		repo.On("UserExists", ctx, int64(3)).Return(true, nil).Once()
		repo.On("CommentExists", ctx, int64(2), int64(3)).Return(true, nil).Once()

		_, err := svc.AddComment(ctx, 3, 2, "again")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("NeverBooked", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewItemService(repo, &logger, clock)

		repo.On("UserExists", ctx, int64(3)).Return(true, nil).Once()
		repo.On("CommentExists", ctx, int64(2), int64(3)).Return(false, nil).Once()
		repo.On("HasFinishedBooking", ctx, int64(2), int64(3), now).Return(false, nil).Once()

		_, err := svc.AddComment(ctx, 3, 2, "never used it")
		assert.ErrorIs(t, err, ErrConflict)
	})
}
