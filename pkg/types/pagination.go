package types

// Page is the paginated list envelope returned by every list endpoint.
type Page[T any] struct {
	Data        []T    `json:"data"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	Total       uint64 `json:"total"`
}

func NewPage[T any](data []T, filter Filter, total uint64) Page[T] {
	if data == nil {
		data = []T{}
	}
	perPage, page, lastPage := filter.Limit, filter.Page, filter.LastPage(total)
	if !filter.WithPagination {
		perPage, page, lastPage = len(data), 1, 1
	}
	return Page[T]{
		Data:        data,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
}
