package api

import (
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// parsePage читает пагинацию from/size из параметров запроса.
// Когда оба параметра отсутствуют, выборка не ограничивается.
func parsePage(r *http.Request) (*models.Page, error) {
	fromRaw := r.URL.Query().Get("from")
	sizeRaw := r.URL.Query().Get("size")
	if fromRaw == "" && sizeRaw == "" {
		return nil, nil
	}

	from := 0
	if fromRaw != "" {
		parsed, err := strconv.Atoi(fromRaw)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("from must be a non-negative integer, got %q", fromRaw)
		}
		from = parsed
	}

	size := defaultPageSize
	if sizeRaw != "" {
		parsed, err := strconv.Atoi(sizeRaw)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			return nil, fmt.Errorf("size must be between 1 and %d, got %q", maxPageSize, sizeRaw)
		}
		size = parsed
	}

	return &models.Page{From: from, Size: size}, nil
}
