package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Clock отдает текущее время; в тестах подменяется фиксированным.
type Clock func() time.Time

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      Clock
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger, clock Clock) *BookingService {
	if clock == nil {
		clock = time.Now
	}
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      clock,
	}
}

// Create проверяет инварианты создания бронирования и сохраняет его
// в статусе WAITING.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("booking start date must be before end date: %w", ErrValidation)
	}

	if err := s.requireUser(ctx, bookerID); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("item with id=%d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	// Владельцу отвечаем not found, а не forbidden, чтобы не раскрывать
	// принадлежность вещи.
	if item.OwnerID == bookerID {
		return nil, fmt.Errorf("the owner cannot book his own item: %w", ErrNotFound)
	}

	if !item.Available {
		return nil, fmt.Errorf("item with id=%d is not available: %w", itemID, ErrConflict)
	}

	crossed, err := s.repo.HasApprovedOverlap(ctx, itemID, start, end)
	if err != nil {
		return nil, err
	}
	if crossed {
		return nil, s.unavailableWindowErr(itemID, start, end)
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		// Пересечение могло появиться между проверкой и записью;
		// транзакция в хранилище ловит это повторной проверкой.
		if errors.Is(err, database.ErrTimeCross) {
			return nil, s.unavailableWindowErr(itemID, start, end)
		}
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

// Approve переводит бронирование из WAITING в APPROVED или REJECTED.
// Делать это может только владелец вещи, пока бронь не истекла.
func (s *BookingService) Approve(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("booking with id=%d: %w", bookingID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	// Бронирующему отвечаем not found по той же причине, что и владельцу
	// при создании.
	if booking.BookerID == actorID {
		return nil, fmt.Errorf("booker cannot change booking status: %w", ErrNotFound)
	}

	if booking.Status != models.StatusWaiting {
		return nil, fmt.Errorf("the booking status should be 'WAITING': %w", ErrConflict)
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("user(id=%d) does not have access to approve booking: %w", actorID, ErrNoAccess)
	}

	if booking.End.Before(s.now()) {
		return nil, fmt.Errorf("cannot confirm a booking that has already expired: %w", ErrNoAccess)
	}

	crossed, err := s.repo.HasApprovedOverlap(ctx, booking.ItemID, booking.Start, booking.End)
	if err != nil {
		return nil, err
	}
	if crossed {
		return nil, s.unavailableWindowErr(booking.ItemID, booking.Start, booking.End)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.repo.UpdateBookingStatusChecked(ctx, booking, status); err != nil {
		if errors.Is(err, database.ErrTimeCross) {
			return nil, s.unavailableWindowErr(booking.ItemID, booking.Start, booking.End)
		}
		if errors.Is(err, database.ErrConcurrentModification) {
			return nil, fmt.Errorf("booking with id=%d was changed concurrently: %w", bookingID, ErrConflict)
		}
		return nil, err
	}

	s.publishEvent(eventType, booking)
	return booking, nil
}

// GetByIDForUser возвращает бронирование, если пользователь — его
// бронирующий или владелец вещи.
func (s *BookingService) GetByIDForUser(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	booking, err := s.repo.GetBookingForUser(ctx, bookingID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("booking with id=%d: %w", bookingID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) GetAllByBooker(ctx context.Context, userID int64, state string, page *models.Page) ([]models.Booking, error) {
	return s.getByUserAndState(ctx, models.ScopeBooker(userID), userID, state, page)
}

func (s *BookingService) GetAllByOwner(ctx context.Context, userID int64, state string, page *models.Page) ([]models.Booking, error) {
	return s.getByUserAndState(ctx, models.ScopeOwner(userID), userID, state, page)
}

func (s *BookingService) getByUserAndState(ctx context.Context, scope models.BookingScope, userID int64, state string, page *models.Page) ([]models.Booking, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	bookingState, err := models.ParseBookingState(state)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrBadRequest)
	}

	filter := models.FilterForState(scope, bookingState, s.now())
	return s.repo.GetBookingsByFilter(ctx, filter, page)
}

func (s *BookingService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user with id=%d: %w", userID, ErrNotFound)
	}
	return nil
}

func (s *BookingService) unavailableWindowErr(itemID int64, start, end time.Time) error {
	return fmt.Errorf("booking item(id=%d) is not available for dates from %s to %s: %w",
		itemID, start.Format(time.RFC3339), end.Format(time.RFC3339), ErrConflict)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
