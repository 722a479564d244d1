package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	cases := []struct {
		name      string
		page      int
		limit     int
		total     int
		wantPages int
	}{
		{"empty", 1, 20, 0, 0},
		{"exact fit", 1, 20, 40, 2},
		{"partial last page", 1, 20, 41, 3},
		{"zero limit does not panic", 1, 0, 5, 5},
		{"negative limit does not panic", 1, -3, 5, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := NewPaginationMeta(tc.page, tc.limit, tc.total)
			assert.Equal(t, tc.wantPages, meta.TotalPages)
			assert.Equal(t, tc.total, meta.Total)
			assert.Equal(t, tc.page, meta.CurrentPage)
		})
	}
}
