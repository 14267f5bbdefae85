package repository

// MaxPageSize caps every listing regardless of what the caller asks for.
const MaxPageSize = 100

// Pagination selects one 1-based page of a listing.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

// WithDefaults fills an unset page number or size and clamps the size to MaxPageSize.
func (p Pagination) WithDefaults(size int32) Pagination {
	if p.PageNo < 1 {
		p.PageNo = 1
	}
	if p.PageSize < 1 {
		p.PageSize = size
	}
	p.PageSize = min(p.PageSize, MaxPageSize)
	return p
}

func (p Pagination) Offset() int32 { return (p.PageNo - 1) * p.PageSize }

// FilterOrder carries the raw filter and order_by expressions of a listing request.
type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo FilterOrder) GetFilter() string  { return fo.Filter }
func (fo FilterOrder) GetOrderBy() string { return fo.OrderBy }
