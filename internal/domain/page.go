package domain

// Page bounds for plan listings. MaxPage keeps (Page-1)*Limit well inside
// int; a page past the last one is simply empty.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 1_000_000
)

// PaginationParams selects one page of a listing, newest first. Page is
// 1-based.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds PaginationParams from optional query values.
// Missing or non-positive values fall back to page 1 and DefaultPageSize;
// Page is capped at MaxPage and Limit at MaxPageSize.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageSize)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns how many pages of p.Limit rows hold total rows.
func (p PaginationParams) TotalPages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// HasMore reports whether rows remain after this page.
func (p PaginationParams) HasMore(total int64) bool {
	return int64(p.Page)*int64(p.Limit) < total
}
