package dto

// Filter is an exact-match predicate. One value means "=", several mean "IN".
// Filters in a QueryRequest are ordered by Column.
type Filter struct {
	Column string
	Values []string
}

// QueryRequest is the validated form of one list request.
type QueryRequest struct {
	Limit   int
	Offset  int
	SortBy  string
	Order   string // "asc" or "desc"
	Filters []Filter
}

// Descending reports whether the ORDER BY direction is DESC.
func (q QueryRequest) Descending() bool {
	return q.Order == "desc"
}

// Row is one record as returned by the driver, keyed by column name.
type Row = map[string]any

// ListResponse is the 200 body of every dataset route.
type ListResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Page         int    `json:"page"`
	TotalPages   int    `json:"total_pages"`
	RecordsShown int    `json:"records_shown"`
	Data         []Row  `json:"data"`
}
