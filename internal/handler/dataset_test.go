package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/dto"
	"github.com/Payphone-Digital/openpayments/internal/model"
	"github.com/Payphone-Digital/openpayments/internal/service"
	"github.com/Payphone-Digital/openpayments/pkg/circuit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStore struct {
	rows  []dto.Row
	total int64
	err   error
	calls int
}

func (s *stubStore) Find(_ context.Context, _ model.Dataset, req dto.QueryRequest) ([]dto.Row, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.rows) > req.Limit {
		return s.rows[:req.Limit], nil
	}
	return s.rows, nil
}

func (s *stubStore) Count(context.Context, model.Dataset, dto.QueryRequest) (int64, error) {
	return s.total, nil
}

func newRouter(store service.Store) *gin.Engine {
	datasets, err := model.NewRegistry(model.DefaultDatasets()...)
	if err != nil {
		panic(err)
	}
	breakers := circuit.NewRegistry(circuit.DefaultConfig(), nil, nil)
	h := NewDatasetHandler(service.NewDatasetService(store, breakers, nil, service.QueryOptions{Timeout: time.Second}), datasets)

	r := gin.New()
	for _, ds := range datasets.All() {
		r.GET(ds.Path(), h.List(ds.Name))
	}
	return r
}

func get(t *testing.T, r http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func sampleRows(n int) []dto.Row {
	rows := make([]dto.Row, n)
	for i := range rows {
		rows[i] = dto.Row{"record_id": i + 1, "physician_npi": "1234567890"}
	}
	return rows
}

func TestDatasetHandler_GeneralPaymentsExample(t *testing.T) {
	store := &stubStore{rows: sampleRows(5), total: 23}
	w, body := get(t, newRouter(store), "/general_payments?limit=5&offset=0&sort_by=date_of_payment&order=asc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Data fetched successfully", body["message"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(5), body["total_pages"])
	assert.Equal(t, float64(5), body["records_shown"])
	assert.Len(t, body["data"], 5)
}

func TestDatasetHandler_OwnershipExample(t *testing.T) {
	store := &stubStore{rows: sampleRows(3), total: 3}
	w, body := get(t, newRouter(store), "/ownership?limit=1&sort_by=physician_npi&order=desc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(3), body["total_pages"])
	assert.Equal(t, float64(1), body["records_shown"])
	assert.Len(t, body["data"], 1)
}

func TestDatasetHandler_EmptyDataIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&stubStore{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/research_payments", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
	assert.Contains(t, w.Body.String(), `"records_shown":0`)
}

func TestDatasetHandler_BadRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"zero limit", "/general_payments?limit=0", "limit must be a positive integer."},
		{"negative limit", "/research_payments?limit=-5", "limit must be a positive integer."},
		{"text limit", "/ownership?limit=abc", "limit must be a positive integer."},
		{"negative offset", "/general_payments?offset=-1", "offset must be a non-negative integer."},
		{"bad order", "/general_payments?order=sideways", "order must be either 'asc' or 'desc'."},
		{"sort outside allow-list", "/ownership?sort_by=program_year", "sort_by must be one of: record_id, physician_npi."},
		{"unknown filter", "/general_payments?bogus=1", "filter field 'bogus' is not allowed."},
		{
			"every rule at once", "/ownership?limit=0&offset=-1&order=up&sort_by=x",
			"limit must be a positive integer. offset must be a non-negative integer. " +
				"order must be either 'asc' or 'desc'. sort_by must be one of: record_id, physician_npi.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{}
			w, body := get(t, newRouter(store), tt.target)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, map[string]any{"status": "Bad Request", "message": tt.want}, body)
			assert.Zero(t, store.calls)
		})
	}
}

func TestDatasetHandler_StorageErrorIsOpaque(t *testing.T) {
	store := &stubStore{err: errors.New(`pq: column "secret" does not exist`)}
	w, body := get(t, newRouter(store), "/general_payments?recipient_state=CA")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"status": "error", "message": "Internal Server Error"}, body)
	assert.NotContains(t, w.Body.String(), "secret")
}
