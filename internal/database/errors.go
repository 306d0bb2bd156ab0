package database

import "errors"

var (
	// ErrNotFound возвращается, когда запись отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail возвращается при нарушении уникальности email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrTimeCross возвращается, когда интервал пересекается с подтвержденным бронированием.
	ErrTimeCross = errors.New("approved booking with crossing time exists")
	// ErrConcurrentModification возвращается, когда строка изменена между чтением и записью.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
