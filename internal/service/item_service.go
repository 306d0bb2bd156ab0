package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    Clock
}

func NewItemService(repo domain.Repository, logger *zerolog.Logger, clock Clock) *ItemService {
	if clock == nil {
		clock = time.Now
	}
	return &ItemService{repo: repo, logger: logger, now: clock}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item models.Item) (*models.Item, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	if item.RequestID != nil {
		if _, err := s.repo.GetRequest(ctx, *item.RequestID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, fmt.Errorf("request(id=%d): %w", *item.RequestID, ErrNotFound)
			}
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update меняет только переданные поля; менять вещь может только владелец.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItemByIDAndOwner(ctx, itemID, ownerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("item with id=%d for owner id=%d: %w", itemID, ownerID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID возвращает карточку вещи. Last/next бронирования видит только
// владелец: выборка идет по паре (вещь, владелец), для остальных она пуста.
func (s *ItemService) GetByID(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("item with id=%d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.GetApprovedBookingsForItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.GetCommentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &models.ItemDetails{
		Item:        *item,
		LastBooking: lastBooking(bookings, now),
		NextBooking: nextBooking(bookings, now),
		Comments:    nonNilComments(comments),
	}, nil
}

// GetAllByOwner собирает карточки всех вещей владельца. Бронирования и
// комментарии выбираются одним запросом на владельца и группируются по вещи.
func (s *ItemService) GetAllByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]models.ItemDetails, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("user with id=%d has no items: %w", ownerID, ErrNotFound)
	}

	bookings, err := s.repo.GetApprovedBookingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	bookingsByItem := make(map[int64][]models.Booking)
	for _, b := range bookings {
		bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
	}

	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}
	comments, err := s.repo.GetCommentsByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[int64][]models.Comment)
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}

	now := s.now()
	details := make([]models.ItemDetails, 0, len(items))
	for _, item := range items {
		itemBookings := bookingsByItem[item.ID]
		details = append(details, models.ItemDetails{
			Item:        item,
			LastBooking: lastBooking(itemBookings, now),
			NextBooking: nextBooking(itemBookings, now),
			Comments:    nonNilComments(commentsByItem[item.ID]),
		})
	}
	return details, nil
}

// Search ищет по подстроке имени/описания; пустой текст — пустой результат.
func (s *ItemService) Search(ctx context.Context, text string, page *models.Page) ([]models.Item, error) {
	if text == "" {
		return []models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, page)
}

// AddComment разрешает комментарий только автору завершенного бронирования
// вещи, не более одного на пару (вещь, автор).
func (s *ItemService) AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error) {
	now := s.now()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	exists, err := s.repo.CommentExists(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("comment for item(id=%d) from user(id=%d) already exists: %w", itemID, userID, ErrConflict)
	}

	booked, err := s.repo.HasFinishedBooking(ctx, itemID, userID, now)
	if err != nil {
		return nil, err
	}
	if !booked {
		return nil, fmt.Errorf("user(id=%d) has never booked the item(id=%d): %w", userID, itemID, ErrConflict)
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   itemID,
		AuthorID: userID,
		Created:  now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ItemService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user with id=%d: %w", userID, ErrNotFound)
	}
	return nil
}

// lastBooking — последнее бронирование, начавшееся не позже now.
// Список отсортирован по возрастанию начала; пустой список дает nil.
func lastBooking(bookings []models.Booking, now time.Time) *models.BookingShort {
	var last *models.BookingShort
	for i := range bookings {
		if bookings[i].Start.After(now) {
			break
		}
		last = toBookingShort(&bookings[i])
	}
	return last
}

// nextBooking — первое бронирование, начинающееся позже now.
func nextBooking(bookings []models.Booking, now time.Time) *models.BookingShort {
	for i := range bookings {
		if bookings[i].Start.After(now) {
			return toBookingShort(&bookings[i])
		}
	}
	return nil
}

func toBookingShort(b *models.Booking) *models.BookingShort {
	return &models.BookingShort{ID: b.ID, BookerID: b.BookerID, Start: b.Start}
}

func nonNilComments(comments []models.Comment) []models.Comment {
	if comments == nil {
		return []models.Comment{}
	}
	return comments
}
