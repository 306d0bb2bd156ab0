package api

import (
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

// dateTimeLayout — формат дат во внешнем API: локальная дата-время без зоны.
const dateTimeLayout = "2006-01-02T15:04:05"

// DateTime сериализуется как "2006-01-02T15:04:05".
type DateTime time.Time

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(dateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		return nil
	}
	t, err := time.Parse(dateTimeLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid datetime %q, expected %s", raw, dateTimeLayout)
	}
	*d = DateTime(t)
	return nil
}

func (d DateTime) Time() time.Time { return time.Time(d) }

type UserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type ItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

type BookingShortResponse struct {
	ID       int64    `json:"id"`
	BookerID int64    `json:"bookerId"`
	Start    DateTime `json:"start"`
}

type ItemDetailsResponse struct {
	ItemResponse
	LastBooking *BookingShortResponse `json:"lastBooking"`
	NextBooking *BookingShortResponse `json:"nextBooking"`
	Comments    []CommentResponse     `json:"comments"`
}

type BookingRequest struct {
	ItemID int64     `json:"itemId"`
	Start  *DateTime `json:"start"`
	End    *DateTime `json:"end"`
}

type BookingResponse struct {
	ID     int64     `json:"id"`
	Start  DateTime  `json:"start"`
	End    DateTime  `json:"end"`
	Status string    `json:"status"`
	Booker IDPayload `json:"booker"`
	Item   IDPayload `json:"item"`
}

// IDPayload — вложенная ссылка на сущность по идентификатору.
type IDPayload struct {
	ID int64 `json:"id"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type CommentResponse struct {
	ID       int64    `json:"id"`
	Text     string   `json:"text"`
	AuthorID int64    `json:"authorId"`
	Created  DateTime `json:"created"`
}

type RequestCreateRequest struct {
	Description string `json:"description"`
}

type RequestResponse struct {
	ID          int64          `json:"id"`
	Description string         `json:"description"`
	Created     DateTime       `json:"created"`
	Items       []ItemResponse `json:"items"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
	}
}

func toItemResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	return out
}

func toBookingShortResponse(short *models.BookingShort) *BookingShortResponse {
	if short == nil {
		return nil
	}
	return &BookingShortResponse{ID: short.ID, BookerID: short.BookerID, Start: DateTime(short.Start)}
}

func toItemDetailsResponse(details *models.ItemDetails) ItemDetailsResponse {
	return ItemDetailsResponse{
		ItemResponse: toItemResponse(&details.Item),
		LastBooking:  toBookingShortResponse(details.LastBooking),
		NextBooking:  toBookingShortResponse(details.NextBooking),
		Comments:     toCommentResponses(details.Comments),
	}
}

func toBookingResponse(booking *models.Booking) BookingResponse {
	return BookingResponse{
		ID:     booking.ID,
		Start:  DateTime(booking.Start),
		End:    DateTime(booking.End),
		Status: string(booking.Status),
		Booker: IDPayload{ID: booking.BookerID},
		Item:   IDPayload{ID: booking.ItemID},
	}
}

func toBookingResponses(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

func toCommentResponse(comment *models.Comment) CommentResponse {
	return CommentResponse{
		ID:       comment.ID,
		Text:     comment.Text,
		AuthorID: comment.AuthorID,
		Created:  DateTime(comment.Created),
	}
}

func toCommentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return out
}

func toRequestResponse(details *models.RequestDetails) RequestResponse {
	return RequestResponse{
		ID:          details.ID,
		Description: details.Description,
		Created:     DateTime(details.Created),
		Items:       toItemResponses(details.Items),
	}
}

func toRequestResponses(details []models.RequestDetails) []RequestResponse {
	out := make([]RequestResponse, 0, len(details))
	for i := range details {
		out = append(out, toRequestResponse(&details[i]))
	}
	return out
}
