package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	skip, limit := (&PaginationParams{Page: 3, PerPage: 20}).Window()
	assert.Equal(t, int64(40), skip)
	assert.Equal(t, int64(20), limit)

	var p *PaginationParams
	skip, limit = p.Window()
	assert.Zero(t, skip)
	assert.Equal(t, int64(15), limit)

	skip, limit = (&PaginationParams{Page: 0, PerPage: 500}).Window()
	assert.Zero(t, skip)
	assert.Equal(t, int64(100), limit)
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 10, 25)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	res := NewPaginatedResult[int](nil, NewPagination(1, 10, 0))
	assert.NotNil(t, res.Items)
	assert.False(t, res.Pagination.HasNext)
}
