package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/internal/dto"
	apperrors "github.com/Payphone-Digital/openpayments/internal/errors"
	"github.com/Payphone-Digital/openpayments/internal/model"
	ctxutil "github.com/Payphone-Digital/openpayments/pkg/context"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Lister is the service behind every dataset route.
type Lister interface {
	List(ctx context.Context, ds model.Dataset, params url.Values) (*dto.ListResponse, error)
}

type DatasetHandler struct {
	service  Lister
	datasets *model.Registry
}

func NewDatasetHandler(service Lister, datasets *model.Registry) *DatasetHandler {
	return &DatasetHandler{
		service:  service,
		datasets: datasets,
	}
}

// List returns the gin handler for the named dataset. The definition is read
// from the registry on every request so schema refreshes take effect.
func (h *DatasetHandler) List(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "List")
		ctx = ctxutil.WithDataset(ctx, name)

		ds, ok := h.datasets.Get(name)
		if !ok {
			logger.ErrorWithContext(ctx, "Dataset not registered").Log()
			c.JSON(http.StatusInternalServerError, constants.BuildInternalErrorResponse())
			return
		}

		logger.DebugWithContext(ctx, "List request").
			String("query", c.Request.URL.RawQuery).
			Log()

		resp, err := h.service.List(ctx, ds, c.Request.URL.Query())
		if err != nil {
			status := apperrors.ToHTTPStatus(err)
			if status == http.StatusBadRequest {
				c.JSON(status, constants.BuildBadRequestResponse(apperrors.GetDomainError(err).Message))
				return
			}

			logger.ErrorWithContext(ctx, "List request failed").
				Int("http_status", status).
				Err(err).
				Log()
			c.JSON(http.StatusInternalServerError, constants.BuildInternalErrorResponse())
			return
		}

		logger.InfoWithContext(ctx, "Data fetched successfully").
			Int("page", resp.Page).
			Int("total_pages", resp.TotalPages).
			Int("records_shown", resp.RecordsShown).
			Log()

		c.JSON(http.StatusOK, resp)
	}
}
