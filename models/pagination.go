package models

// Pagination is the metadata block attached to every list response.
type Pagination struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// PaginatedResponse wraps a page of data with its pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ClampPage normalizes a requested page number to be at least 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampSize normalizes a requested page size into [1, 100], falling
// back to def when the request carried zero or a negative value.
func ClampSize(size, def int) int {
	if size <= 0 {
		return def
	}
	if size > 100 {
		return 100
	}
	return size
}

// NewPagination computes the metadata for a page of total results.
func NewPagination(page, size, total int) Pagination {
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return Pagination{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// NewPaginatedResponse builds the standard list envelope.
func NewPaginatedResponse[T any](data []T, total, page, size int) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Data:       data,
		Pagination: NewPagination(page, size, total),
	}
}
