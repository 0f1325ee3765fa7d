package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetPaginationParams(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=5", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	p := GetPaginationParams(c)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 5, p.PageSize)
	assert.Equal(t, 5, p.Offset)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=1000", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	p := GetPaginationParams(c)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.Offset)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, Paginate(items, PaginationParams{Page: 1, PageSize: 3, Offset: 0}))
	assert.Equal(t, []int{7}, Paginate(items, PaginationParams{Page: 3, PageSize: 3, Offset: 6}))
	assert.Empty(t, Paginate(items, PaginationParams{Page: 4, PageSize: 3, Offset: 9}))
}

func TestGetPaginationParamsHugePage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=576460752303423489&limit=20", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	p := GetPaginationParams(c)
	assert.GreaterOrEqual(t, p.Offset, 0)
	assert.Empty(t, Paginate([]int{1, 2, 3}, p))
}

func TestPaginateNegativeOffset(t *testing.T) {
	assert.Empty(t, Paginate([]int{1, 2, 3}, PaginationParams{Page: 1, PageSize: 3, Offset: -3}))
}
