// Package pagination implements page-number pagination for list endpoints.
package pagination

const (
	DefaultPageSize = 20
	MaxPageSize     = 250
)

// Pagination is bound from list request query parameters. Page is zero-based.
type Pagination struct {
	Page int `form:"page,default=0" json:"page"`
	Size int `form:"size,default=20" json:"size" validate:"gte=1,lte=250"`
}

// Normalize clamps the request to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the requested page.
func (p Pagination) Offset() int {
	return p.Page * p.Size
}

// PageInfo describes the page a list response was cut from.
type PageInfo struct {
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	HasNext       bool  `json:"has_next"`
	HasPrevious   bool  `json:"has_previous"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// BuildPageInfo derives page metadata from the total row count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	p = p.Normalize()

	totalPages := int(total) / p.Size
	if int(total)%p.Size != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	return PageInfo{
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		HasNext:       p.Page < totalPages-1,
		HasPrevious:   p.Page > 0,
		First:         p.Page == 0,
		Last:          p.Page >= totalPages-1,
	}
}
