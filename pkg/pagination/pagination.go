package pagination

const (
	// DefaultPage is used when the page is missing or below one.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
	// MaxPage keeps (page-1)*limit well inside int range.
	MaxPage = 1 << 20
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

// Meta is the pagination block returned alongside list results.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// Normalize applies defaults, caps limit and page, and derives Skip.
func Normalize(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > MaxPage {
		page = MaxPage
	}
	return Params{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// NewMeta builds the response block for a page of total items.
func NewMeta(p Params, total int64) Meta {
	limit := p.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Meta{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  p.Page < pages,
		HasPrevPage:  p.Page > 1,
	}
}
