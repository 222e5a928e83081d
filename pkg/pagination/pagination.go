package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the number of items returned when no limit is given
	DefaultLimit = 20
	// MaxLimit caps the number of items a single page may return
	MaxLimit = 100
	// DefaultOffset is the starting offset when none is given
	DefaultOffset = 0
)

// Params holds parsed pagination parameters
type Params struct {
	Limit  int
	Offset int
}

// Meta describes the pagination state of a list response
type Meta struct {
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	HasMore     bool  `json:"has_more"`
}

// ParseParams extracts limit/offset query parameters with sane bounds
func ParseParams(c *gin.Context) Params {
	limit := DefaultLimit
	offset := DefaultOffset

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return Params{Limit: limit, Offset: offset}
}

// BuildMeta builds pagination metadata for a list response
func BuildMeta(limit, offset int, total int64) *Meta {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}
	if total < 0 {
		total = 0
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &Meta{
		Limit:       limit,
		Offset:      offset,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: GetCurrentPage(offset, limit),
		HasMore:     HasMore(offset, limit, total),
	}
}

// HasMore reports whether items remain beyond the current page
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}

// GetCurrentPage converts an offset into a 1-based page number
func GetCurrentPage(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	if offset < 0 {
		offset = 0
	}
	return offset/limit + 1
}
