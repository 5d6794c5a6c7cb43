package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaRepository_Columns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSchemaRepository(db)

	mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).
		WithArgs("ownership").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("record_id").
			AddRow("physician_npi").
			AddRow("program_year"))

	cols, err := repo.Columns(context.Background(), "ownership")

	require.NoError(t, err)
	assert.Equal(t, []string{"record_id", "physician_npi", "program_year"}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepository_ColumnsUnknownTable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSchemaRepository(db)

	mock.ExpectQuery(`information_schema.columns`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	cols, err := repo.Columns(context.Background(), "nope")

	assert.Nil(t, cols)
	assert.Error(t, err)
}

func TestSchemaRepository_ColumnsQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSchemaRepository(db)
	boom := errors.New("permission denied")

	mock.ExpectQuery(`information_schema.columns`).WillReturnError(boom)

	_, err := repo.Columns(context.Background(), "ownership")
	assert.ErrorIs(t, err, boom)
}
