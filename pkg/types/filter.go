package types

// Filter is the parsed list query: ?search=..&sort[name]=asc&filter[division_id]=1&page=2&per_page=20
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"per_page"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

// LastPage returns the 1-based number of the last page for total rows.
func (f Filter) LastPage(total uint64) int {
	if f.Limit <= 0 || total == 0 {
		return 1
	}
	pages := int(total) / f.Limit
	if int(total)%f.Limit != 0 {
		pages++
	}
	return pages
}

// Unpaged returns a copy of f that selects every row.
func (f Filter) Unpaged() Filter {
	f.WithPagination = false
	f.Offset = 0
	return f
}
