package models

import "time"

// BookingShort — короткая проекция бронирования для карточки вещи.
type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"booker_id"`
	Start    time.Time `json:"start"`
}

// ItemDetails — вещь с агрегированной активностью: последнее и следующее
// подтвержденные бронирования и комментарии.
type ItemDetails struct {
	Item
	LastBooking *BookingShort `json:"last_booking,omitempty"`
	NextBooking *BookingShort `json:"next_booking,omitempty"`
	Comments    []Comment     `json:"comments"`
}

// RequestDetails — запрос со списком вещей, созданных по нему.
type RequestDetails struct {
	ItemRequest
	Items []Item `json:"items"`
}

// UserPatch — частичное обновление пользователя; nil-поля не трогаются.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ItemPatch — частичное обновление вещи; nil-поля не трогаются.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}
