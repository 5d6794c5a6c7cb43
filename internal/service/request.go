package service

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/internal/dto"
	apperrors "github.com/Payphone-Digital/openpayments/internal/errors"
	"github.com/Payphone-Digital/openpayments/internal/model"
)

// Validation messages returned to clients.
const (
	MsgInvalidLimit  = "limit must be a positive integer."
	MsgInvalidOffset = "offset must be a non-negative integer."
	MsgInvalidOrder  = "order must be either 'asc' or 'desc'."
)

func msgLimitTooLarge(max int) string {
	return fmt.Sprintf("limit must not exceed %d.", max)
}

func msgInvalidSort(allowed []string) string {
	return fmt.Sprintf("sort_by must be one of: %s.", strings.Join(allowed, ", "))
}

func msgInvalidFilter(column string) string {
	return fmt.Sprintf("filter field '%s' is not allowed.", column)
}

// ParseQueryRequest turns raw query parameters into a validated request for ds.
// Every failing rule contributes one message; the result is a single
// INVALID_INPUT error listing them in a fixed order. maxLimit <= 0 disables the cap.
func ParseQueryRequest(ds model.Dataset, params url.Values, maxLimit int) (dto.QueryRequest, error) {
	req := dto.QueryRequest{
		Limit:  ds.DefaultLimit,
		Offset: constants.DefaultOffset,
		SortBy: ds.DefaultSort,
		Order:  constants.DefaultOrder,
	}
	var messages []string

	if raw, ok := single(params, constants.QueryParamLimit); ok {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil || limit <= 0:
			messages = append(messages, MsgInvalidLimit)
		case maxLimit > 0 && limit > maxLimit:
			messages = append(messages, msgLimitTooLarge(maxLimit))
		default:
			req.Limit = limit
		}
	} else if present(params, constants.QueryParamLimit) {
		messages = append(messages, MsgInvalidLimit)
	}

	if raw, ok := single(params, constants.QueryParamOffset); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			messages = append(messages, MsgInvalidOffset)
		} else {
			req.Offset = offset
		}
	} else if present(params, constants.QueryParamOffset) {
		messages = append(messages, MsgInvalidOffset)
	}

	if raw, ok := single(params, constants.QueryParamOrder); ok {
		order := strings.ToLower(raw)
		if order != constants.OrderAsc && order != constants.OrderDesc {
			messages = append(messages, MsgInvalidOrder)
		} else {
			req.Order = order
		}
	} else if present(params, constants.QueryParamOrder) {
		messages = append(messages, MsgInvalidOrder)
	}

	if raw, ok := single(params, constants.QueryParamSortBy); ok {
		if !ds.AllowsSort(raw) {
			messages = append(messages, msgInvalidSort(ds.SortFields))
		} else {
			req.SortBy = raw
		}
	} else if present(params, constants.QueryParamSortBy) {
		messages = append(messages, msgInvalidSort(ds.SortFields))
	}

	columns := make([]string, 0, len(params))
	for key := range params {
		if !constants.IsControlParam(key) {
			columns = append(columns, key)
		}
	}
	sort.Strings(columns)

	for _, column := range columns {
		if !ds.AllowsFilter(column) {
			messages = append(messages, msgInvalidFilter(column))
			continue
		}
		req.Filters = append(req.Filters, dto.Filter{Column: column, Values: params[column]})
	}

	if len(messages) > 0 {
		return dto.QueryRequest{}, apperrors.NewValidationError(messages)
	}
	return req, nil
}

// single returns the value of a parameter supplied exactly once.
func single(params url.Values, key string) (string, bool) {
	values, ok := params[key]
	if !ok || len(values) != 1 {
		return "", false
	}
	return values[0], true
}

// present reports whether a parameter was supplied at all, including repeated.
func present(params url.Values, key string) bool {
	_, ok := params[key]
	return ok
}
