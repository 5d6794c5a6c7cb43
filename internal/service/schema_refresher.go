package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/model"
	"github.com/Payphone-Digital/openpayments/pkg/validation"
	"go.uber.org/zap"
)

// ColumnSource lists the columns of a table.
type ColumnSource interface {
	Columns(ctx context.Context, table string) ([]string, error)
}

// SchemaRefresher replaces each dataset's filter allow-list with the columns
// the database actually has.
type SchemaRefresher struct {
	registry *model.Registry
	source   ColumnSource
	logger   *zap.Logger
}

func NewSchemaRefresher(registry *model.Registry, source ColumnSource, logger *zap.Logger) *SchemaRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaRefresher{
		registry: registry,
		source:   source,
		logger:   logger,
	}
}

// Refresh updates every dataset. A dataset whose table cannot be read keeps
// its current allow-list; the error count is returned.
func (r *SchemaRefresher) Refresh(ctx context.Context) error {
	r.logger.Info("Starting dataset schema refresh")

	errorCount := 0
	for _, ds := range r.registry.All() {
		if err := r.refreshOne(ctx, ds); err != nil {
			r.logger.Error("Failed to refresh dataset columns",
				zap.String("dataset", ds.Name),
				zap.String("table", ds.Table),
				zap.Error(err),
			)
			errorCount++
		}
	}

	r.logger.Info("Dataset schema refresh completed",
		zap.Int("total", r.registry.Count()),
		zap.Int("errors", errorCount),
	)

	if errorCount > 0 {
		return fmt.Errorf("schema refresh completed with %d errors", errorCount)
	}
	return nil
}

func (r *SchemaRefresher) refreshOne(ctx context.Context, ds model.Dataset) error {
	discovered, err := r.source.Columns(ctx, ds.Table)
	if err != nil {
		return err
	}

	columns := make([]string, 0, len(discovered))
	known := make(map[string]struct{}, len(discovered))
	for _, c := range discovered {
		if !validation.IsSQLIdentifier(c) {
			r.logger.Warn("Skipping column with unsupported name",
				zap.String("dataset", ds.Name),
				zap.String("column", c),
			)
			continue
		}
		columns = append(columns, c)
		known[c] = struct{}{}
	}

	for _, f := range ds.SortFields {
		if _, ok := known[f]; !ok {
			r.logger.Warn("Sort field not found in table",
				zap.String("dataset", ds.Name),
				zap.String("table", ds.Table),
				zap.String("column", f),
			)
		}
	}

	if err := r.registry.SetFilterFields(ds.Name, columns); err != nil {
		return err
	}

	r.logger.Debug("Dataset columns refreshed",
		zap.String("dataset", ds.Name),
		zap.Int("columns", len(columns)),
	)
	return nil
}

// Run refreshes every interval until ctx is done.
func (r *SchemaRefresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, interval)
			_ = r.Refresh(refreshCtx)
			cancel()
		}
	}
}
