package domain

// Page is the pagination state of a list view
type Page struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
}

// TotalPages is ceil(TotalCount/Limit), at least 1
func (p Page) TotalPages() int {
	if p.Limit <= 0 || p.TotalCount <= 0 {
		return 1
	}
	return (p.TotalCount + p.Limit - 1) / p.Limit
}

// Clamp bounds page into [1, TotalPages]
func (p Page) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if total := p.TotalPages(); page > total {
		return total
	}
	return page
}

// HasNext reports whether a following page exists
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Page > 1
}
