package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/internal/dto"
	apperrors "github.com/Payphone-Digital/openpayments/internal/errors"
	"github.com/Payphone-Digital/openpayments/internal/model"
	"github.com/Payphone-Digital/openpayments/pkg/circuit"
	ctxutil "github.com/Payphone-Digital/openpayments/pkg/context"
	"github.com/Payphone-Digital/openpayments/pkg/database"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/Payphone-Digital/openpayments/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Store runs the two read queries behind every dataset route.
type Store interface {
	Find(ctx context.Context, ds model.Dataset, req dto.QueryRequest) ([]dto.Row, error)
	Count(ctx context.Context, ds model.Dataset, req dto.QueryRequest) (int64, error)
}

type QueryOptions struct {
	Timeout  time.Duration // per request, covers both queries; 0 means none
	MaxLimit int           // 0 means uncapped
}

type DatasetService struct {
	store    Store
	breakers *circuit.Registry
	cache    *CountCache
	opts     QueryOptions
}

// NewDatasetService wires the store. cache may be nil.
func NewDatasetService(store Store, breakers *circuit.Registry, cache *CountCache, opts QueryOptions) *DatasetService {
	return &DatasetService{
		store:    store,
		breakers: breakers,
		cache:    cache,
		opts:     opts,
	}
}

// List validates params, then fetches one page and the total for ds.
// Validation failures are INVALID_INPUT and never reach the store; every
// store failure, including timeouts and an open breaker, is STORAGE_ERROR.
func (s *DatasetService) List(ctx context.Context, ds model.Dataset, params url.Values) (*dto.ListResponse, error) {
	ctx = ctxutil.WithDataset(ctxutil.WithFunction(ctx, "service", "List"), ds.Name)

	req, err := ParseQueryRequest(ds, params, s.opts.MaxLimit)
	if err != nil {
		logger.InfoWithContext(ctx, "Rejected query parameters").
			Err(err).
			Log()
		return nil, err
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	var (
		rows  []dto.Row
		total int64
	)
	err = s.breakers.GetOrCreate(ds.Name).Execute(ctx, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			start := time.Now()
			defer observe(ds.Name, metrics.KindData, start)
			var err error
			rows, err = s.store.Find(gctx, ds, req)
			return err
		})
		g.Go(func() error {
			var err error
			total, err = s.count(gctx, ds, req)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		reason := failureReason(err)
		metrics.QueryErrorsTotal.WithLabelValues(ds.Name, reason).Inc()
		logger.ErrorWithContext(ctx, "Dataset query failed").
			String("reason", reason).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrStorage, err)
	}

	if rows == nil {
		rows = []dto.Row{}
	}

	return &dto.ListResponse{
		Status:       constants.StatusSuccess,
		Message:      constants.MsgDataFetched,
		Page:         constants.PageOf(req.Offset, req.Limit),
		TotalPages:   constants.TotalPages(total, req.Limit),
		RecordsShown: len(rows),
		Data:         rows,
	}, nil
}

func (s *DatasetService) count(ctx context.Context, ds model.Dataset, req dto.QueryRequest) (int64, error) {
	if s.cache != nil {
		if total, ok := s.cache.Get(ctx, ds, req.Filters); ok {
			return total, nil
		}
	}

	start := time.Now()
	total, err := s.store.Count(ctx, ds, req)
	observe(ds.Name, metrics.KindCount, start)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, ds, req.Filters, total)
	}
	return total, nil
}

func observe(dataset, kind string, start time.Time) {
	metrics.QueryDuration.WithLabelValues(dataset, kind).Observe(time.Since(start).Seconds())
}

func failureReason(err error) string {
	switch {
	case circuit.Rejected(err):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case database.IsClientError(err):
		return "invalid_value"
	default:
		return "database"
	}
}
