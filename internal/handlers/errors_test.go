package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 50, 0},
		{"second page", "?page=2&perPage=20", 20, 20},
		{"per page above max ignored", "?page=3&perPage=500", 50, 100},
		{"garbage ignored", "?page=abc&perPage=-1", 50, 0},
		{"huge page capped", "?page=9223372036854775807&perPage=200", 200, maxOffset},
		{"page just past cap", "?page=5002&perPage=200", 200, maxOffset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users"+tc.query, nil)

			limit, offset := pagination(c)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}
