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

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    Clock
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger, clock Clock) *RequestService {
	if clock == nil {
		clock = time.Now
	}
	return &RequestService{repo: repo, logger: logger, now: clock}
}

// Create сохраняет запрос; момент создания назначает сервер.
func (s *RequestService) Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: description,
		RequesterID: requesterID,
		Created:     s.now(),
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// GetAllByRequester возвращает запросы пользователя, свежие первыми,
// с ответившими на них вещами.
func (s *RequestService) GetAllByRequester(ctx context.Context, requesterID int64) ([]models.RequestDetails, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// GetAllFromOthers возвращает чужие запросы постранично, свежие первыми.
func (s *RequestService) GetAllFromOthers(ctx context.Context, userID int64, page *models.Page) ([]models.RequestDetails, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsFromOthers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, userID, requestID int64) (*models.RequestDetails, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.repo.GetRequest(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("request with id=%d: %w", requestID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	details, err := s.attachItems(ctx, []models.ItemRequest{*request})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// attachItems одним запросом выбирает вещи по всем запросам и раскладывает
// их по request_id.
func (s *RequestService) attachItems(ctx context.Context, requests []models.ItemRequest) ([]models.RequestDetails, error) {
	details := make([]models.RequestDetails, 0, len(requests))
	if len(requests) == 0 {
		return details, nil
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	items, err := s.repo.GetItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}
	itemsByRequest := make(map[int64][]models.Item)
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		itemsByRequest[*item.RequestID] = append(itemsByRequest[*item.RequestID], item)
	}

	for _, r := range requests {
		answered := itemsByRequest[r.ID]
		if answered == nil {
			answered = []models.Item{}
		}
		details = append(details, models.RequestDetails{ItemRequest: r, Items: answered})
	}
	return details, nil
}

func (s *RequestService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user with id=%d: %w", userID, ErrNotFound)
	}
	return nil
}
