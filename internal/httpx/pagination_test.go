package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		url         string
		wantPage    int
		wantPerPage int
	}{
		{"/x", 1, 10},
		{"/x?page=3", 3, 10},
		{"/x?page=0", 1, 10},
		{"/x?page=-2", 1, 10},
		{"/x?page=abc", 1, 10},
		{"/x?perPage=25", 1, 25},
		{"/x?perPage=9999", 1, 100},
		{"/x?page=2&perPage=5", 2, 5},
		{"/x?page=1&per_page=3", 1, 3},
		{"/x?per_page=9999", 1, 100},
		{"/x?per_page=0", 1, 10},
		{"/x?per_page=3&perPage=7", 1, 3},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		page, perPage := pageParams(r, 10)
		assert.Equal(t, tt.wantPage, page, tt.url)
		assert.Equal(t, tt.wantPerPage, perPage, tt.url)
	}
}

func TestPaginate(t *testing.T) {
	p := paginate(2, 10, 35)
	assert.Equal(t, 4, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)

	last := paginate(4, 10, 35)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)

	empty := paginate(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasPrev)
	assert.False(t, empty.HasNext)
}
