package shared

import (
	"net/url"
	"strconv"
)

// ListFilters represents standard list filters accepted by entity endpoints.
type ListFilters struct {
	Search  string
	Status  string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

// Normalize applies list defaults and caps.
func (f *ListFilters) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// FiltersFromQuery reads the standard list parameters from a query string.
func FiltersFromQuery(values url.Values) ListFilters {
	limit, _ := strconv.Atoi(values.Get("limit"))
	offset, _ := strconv.Atoi(values.Get("offset"))
	return ListFilters{
		Search:  values.Get("search"),
		Status:  values.Get("status"),
		SortBy:  values.Get("sort"),
		SortDir: values.Get("dir"),
		Limit:   limit,
		Offset:  offset,
	}
}
