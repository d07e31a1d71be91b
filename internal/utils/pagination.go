package utils

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// maxOffset keeps (page-1)*limit well inside int range and Postgres' bigint.
	maxOffset = math.MaxInt32
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// NewPagination builds a Pagination from raw page and limit values. Missing,
// unparsable or non-positive values fall back to the defaults, limit is capped
// at MaxLimit and page is clamped so the offset stays within maxOffset.
func NewPagination(page, limit string) Pagination {
	return Paginate(parseInt(page, DefaultPage), parseInt(limit, DefaultLimit))
}

// Paginate normalizes page and limit and derives the offset.
func Paginate(page, limit int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	if lastPage := maxOffset/limit + 1; page > lastPage {
		page = lastPage
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages returns how many pages of Limit items cover total items.
func (p Pagination) TotalPages(total int64) int64 {
	if p.Limit <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
