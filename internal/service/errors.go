package service

import "errors"

// Виды бизнес-ошибок; граница HTTP сопоставляет их со статусами.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrNoAccess       = errors.New("no access")
	ErrBadRequest     = errors.New("bad request")
	ErrDuplicateEmail = errors.New("email conflict")
)
