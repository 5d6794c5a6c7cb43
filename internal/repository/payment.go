package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/dto"
	"github.com/Payphone-Digital/openpayments/internal/model"
	ctxutil "github.com/Payphone-Digital/openpayments/pkg/context"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository runs the data and count queries for every dataset. Table and
// column names come from a validated model.Dataset / dto.QueryRequest and are
// quoted by the dialect; values are always bound.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// filterScope conjoins one equality (or IN) predicate per filter.
func filterScope(filters []dto.Filter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for _, f := range filters {
			col := clause.Column{Name: f.Column}
			if len(f.Values) == 1 {
				tx = tx.Where(clause.Eq{Column: col, Value: f.Values[0]})
				continue
			}
			values := make([]interface{}, len(f.Values))
			for i, v := range f.Values {
				values[i] = v
			}
			tx = tx.Where(clause.IN{Column: col, Values: values})
		}
		return tx
	}
}

// projection returns the SELECT list; empty Columns means "*".
func projection(columns []string) clause.Select {
	sel := clause.Select{}
	for _, c := range columns {
		sel.Columns = append(sel.Columns, clause.Column{Name: c})
	}
	return sel
}

// dataQuery builds SELECT <cols> FROM <table> [WHERE ...] ORDER BY <col> <dir> LIMIT OFFSET.
func dataQuery(tx *gorm.DB, ds model.Dataset, req dto.QueryRequest) *gorm.DB {
	return tx.Table(ds.Table).
		Clauses(projection(ds.Columns)).
		Scopes(filterScope(req.Filters)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: req.SortBy}, Desc: req.Descending()}).
		Limit(req.Limit).
		Offset(req.Offset)
}

// countQuery builds SELECT count(*) FROM <table> [WHERE ...] reusing only the filters.
func countQuery(tx *gorm.DB, ds model.Dataset, req dto.QueryRequest) *gorm.DB {
	return tx.Table(ds.Table).Scopes(filterScope(req.Filters))
}

// Find returns one page of rows.
func (r *PaymentRepository) Find(ctx context.Context, ds model.Dataset, req dto.QueryRequest) ([]dto.Row, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Find")

	logger.DebugWithContext(ctx, "Fetching page").
		String("table", ds.Table).
		Int("limit", req.Limit).
		Int("offset", req.Offset).
		String("sort_by", req.SortBy).
		String("order", req.Order).
		Int("filter_count", len(req.Filters)).
		Log()

	start := time.Now()
	rows := []dto.Row{}
	err := dataQuery(r.db.WithContext(ctx), ds, req).Find(&rows).Error
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch page").
			String("table", ds.Table).
			Duration(duration).
			Err(err).
			Log()
		return nil, err
	}

	logger.LogDatabase("select", ds.Table, duration.Milliseconds())
	return rows, nil
}

// Count returns the number of rows matching the filters.
func (r *PaymentRepository) Count(ctx context.Context, ds model.Dataset, req dto.QueryRequest) (int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Count")

	start := time.Now()
	var total int64
	err := countQuery(r.db.WithContext(ctx), ds, req).Count(&total).Error
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to count rows").
			String("table", ds.Table).
			Duration(duration).
			Err(err).
			Log()
		return 0, err
	}

	logger.LogDatabase("count", ds.Table, duration.Milliseconds())
	return total, nil
}
