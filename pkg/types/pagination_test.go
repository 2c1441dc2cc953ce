package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterLastPage(t *testing.T) {
	f := Filter{Limit: 20}

	assert.Equal(t, 1, f.LastPage(0))
	assert.Equal(t, 1, f.LastPage(20))
	assert.Equal(t, 2, f.LastPage(21))
	assert.Equal(t, 5, f.LastPage(100))
}

func TestNewPage(t *testing.T) {
	page := NewPage([]string{"a", "b"}, Filter{Limit: 2, Page: 3, WithPagination: true}, 7)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 4, page.LastPage)
	assert.Equal(t, 2, page.PerPage)
	assert.Equal(t, uint64(7), page.Total)

	unpaged := NewPage[string](nil, Filter{Limit: 20, Page: 4}, 0)
	assert.NotNil(t, unpaged.Data)
	assert.Equal(t, 1, unpaged.CurrentPage)
	assert.Equal(t, 1, unpaged.LastPage)
	assert.Equal(t, 0, unpaged.PerPage)
}
