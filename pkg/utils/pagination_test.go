package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 12, 8},
		{5, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TotalPages(c.total, c.size), "total=%d size=%d", c.total, c.size)
	}
}

func TestPagination(t *testing.T) {
	p := Pagination{Total: 25, Page: 2, PageSize: 10, TotalPages: 3}
	assert.True(t, p.Consistent())
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrev())
	assert.Equal(t, 10, p.Offset())

	p.TotalPages = 2
	assert.False(t, p.Consistent())

	last := Pagination{Total: 25, Page: 3, PageSize: 10, TotalPages: 3}
	assert.False(t, last.HasNext())
}
