package domain

import (
	"context"
	"time"

	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository — хранилище сервиса: пользователи, вещи, запросы,
// бронирования и комментарии.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context, page *models.Page) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
	OtherUserWithEmailExists(ctx context.Context, id int64, email string) (bool, error)

	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemByIDAndOwner(ctx context.Context, itemID, ownerID int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]models.Item, error)
	SearchItems(ctx context.Context, text string, page *models.Page) ([]models.Item, error)
	GetItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error)

	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, userID int64) ([]models.ItemRequest, error)
	GetRequestsFromOthers(ctx context.Context, userID int64, page *models.Page) ([]models.ItemRequest, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingForUser(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	GetBookingsByFilter(ctx context.Context, filter models.BookingFilter, page *models.Page) ([]models.Booking, error)
	GetApprovedBookingsByOwner(ctx context.Context, ownerID int64) ([]models.Booking, error)
	GetApprovedBookingsForItem(ctx context.Context, itemID, ownerID int64) ([]models.Booking, error)
	HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error)
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error)
	UpdateBookingStatusChecked(ctx context.Context, booking *models.Booking, status models.BookingStatus) error
	GetAllBookings(ctx context.Context) ([]models.Booking, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
	GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error)
	CommentExists(ctx context.Context, itemID, authorID int64) (bool, error)
}

type UserService interface {
	GetAll(ctx context.Context, page *models.Page) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	Update(ctx context.Context, userID int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, userID int64) error
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item models.Item) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetByID(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error)
	GetAllByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]models.ItemDetails, error)
	Search(ctx context.Context, text string, page *models.Page) ([]models.Item, error)
	AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	Approve(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error)
	GetByIDForUser(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	GetAllByBooker(ctx context.Context, userID int64, state string, page *models.Page) ([]models.Booking, error)
	GetAllByOwner(ctx context.Context, userID int64, state string, page *models.Page) ([]models.Booking, error)
}

type RequestService interface {
	Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error)
	GetAllByRequester(ctx context.Context, userID int64) ([]models.RequestDetails, error)
	GetByID(ctx context.Context, userID, requestID int64) (*models.RequestDetails, error)
	GetAllFromOthers(ctx context.Context, userID int64, page *models.Page) ([]models.RequestDetails, error)
}

// EventPublisher — публикация доменных событий для подписчиков
// (уведомления, метрики).
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimitRepository — состояние ограничения частоты запросов шлюза.
type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TelegramSender — минимальный интерфейс телеграм-клиента для уведомлений.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
