package repository

import (
	"context"
	"fmt"

	ctxutil "github.com/Payphone-Digital/openpayments/pkg/context"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"gorm.io/gorm"
)

const columnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = CURRENT_SCHEMA() AND table_name = ?
ORDER BY ordinal_position`

// SchemaRepository reads table metadata from information_schema.
type SchemaRepository struct {
	db *gorm.DB
}

func NewSchemaRepository(db *gorm.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// Columns returns the column names of table in ordinal order. An unknown table
// yields an error rather than an empty list.
func (r *SchemaRepository) Columns(ctx context.Context, table string) ([]string, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Columns")

	var columns []string
	if err := r.db.WithContext(ctx).Raw(columnsQuery, table).Scan(&columns).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to read table columns").
			String("table", table).
			Err(err).
			Log()
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q has no visible columns", table)
	}

	logger.DebugWithContext(ctx, "Discovered table columns").
		String("table", table).
		Int("count", len(columns)).
		Log()
	return columns, nil
}
