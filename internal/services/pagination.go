package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

// Page is one slice of a listing. Overflow counts the records left after
// this page when pages are laid out page*size apart.
type Page[T any] struct {
	Overflow int64 `json:"overflow"`
	Results  []T   `json:"results"`
}

// ParsePage reads "<page>:<size>". Anything other than two non-negative
// integers is a conflict.
func ParsePage(window string) (page, size int, err error) {
	parts := strings.Split(window, ":")
	if len(parts) != 2 {
		return 0, 0, NewConflictError("generic.bad_page")
	}
	page, perr := strconv.Atoi(strings.TrimSpace(parts[0]))
	size, serr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if perr != nil || serr != nil || page < 0 || size < 0 {
		return 0, 0, NewConflictError("generic.bad_page")
	}
	return page, size, nil
}

// Overflow is max(0, total - page*size - size).
func Overflow(total int64, page, size int) int64 {
	return max(0, total-int64(page)*int64(size)-int64(size))
}

// paginate returns items [page, page+size) of store in primary key order.
// The window starts at index page, not page*size.
func paginate[T any](ctx context.Context, store repositories.Store[T], window string) ([]T, int64, error) {
	page, size, err := ParsePage(window)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := store.Page(ctx, page, size)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []T{}
	}
	return items, Overflow(total, page, size), nil
}
