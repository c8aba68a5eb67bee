package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// PaginationRequest carries 1-based paging parameters
type PaginationRequest struct {
	Page     int `json:"page,omitempty" query:"page" validate:"omitempty,min=1"`
	PageSize int `json:"page_size,omitempty" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// PaginationInfo describes the returned page
type PaginationInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationInfo computes total pages for the given totals
func NewPaginationInfo(page, pageSize int, total int64) PaginationInfo {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginationInfo{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}
