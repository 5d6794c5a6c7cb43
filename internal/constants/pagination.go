package constants

import "math"

// Control Query Parameters. Every other query parameter is an equality filter.
const (
	QueryParamLimit  = "limit"
	QueryParamOffset = "offset"
	QueryParamSortBy = "sort_by"
	QueryParamOrder  = "order"
)

// Default Pagination Values
const (
	DefaultOffset = 0
	DefaultOrder  = OrderAsc
)

// Sort Orders
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// IsControlParam reports whether name is one of the recognized pagination/sort parameters.
func IsControlParam(name string) bool {
	switch name {
	case QueryParamLimit, QueryParamOffset, QueryParamSortBy, QueryParamOrder:
		return true
	}
	return false
}

// PageOf returns the 1-indexed page that offset falls on, saturating at math.MaxInt.
func PageOf(offset, limit int) int {
	page := offset / limit
	if page == math.MaxInt {
		return page
	}
	return page + 1
}

// TotalPages returns ceil(total/limit) without overflowing for any limit.
func TotalPages(total int64, limit int) int {
	l := int64(limit)
	pages := total / l
	if total%l != 0 {
		pages++
	}
	return int(pages)
}
