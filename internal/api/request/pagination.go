package request

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Pagination carries the cursor window for list endpoints: an opaque id
// cursor and a clamped page size.
type Pagination struct {
	Limit  int
	Cursor string
}

// ParsePagination reads the limit and cursor query parameters, falling
// back to DefaultLimit on an absent or unusable limit and clamping to
// MaxLimit.
func ParsePagination(r *http.Request) Pagination {
	q := r.URL.Query()

	limit := DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Pagination{Limit: limit, Cursor: q.Get("cursor")}
}
