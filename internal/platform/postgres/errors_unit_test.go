package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (m mockResult) RowsAffected() (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.rowsAffected, nil
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		expectedError error
		expectedMsg   string
	}{
		{
			name: "nil_error",
		},
		{
			name:          "sql_no_rows",
			err:           sql.ErrNoRows,
			expectedError: store.ErrNotFound,
		},
		{
			name:          "unique_violation",
			err:           &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "card_states_user_word_key"},
			expectedError: store.ErrDuplicate,
		},
		{
			name:          "foreign_key_violation",
			err:           &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "fk_owner"},
			expectedError: store.ErrInvalidEntity,
			expectedMsg:   "foreign key violation (fk_owner)",
		},
		{
			name:          "check_violation",
			err:           &pgconn.PgError{Code: checkViolationCode, ConstraintName: "card_states_ease_factor_check"},
			expectedError: store.ErrInvalidEntity,
			expectedMsg:   "check constraint violation (card_states_ease_factor_check)",
		},
		{
			name:          "not_null_violation",
			err:           &pgconn.PgError{Code: notNullViolationCode, ColumnName: "due_date"},
			expectedError: store.ErrInvalidEntity,
			expectedMsg:   "not null violation (due_date)",
		},
		{
			name:        "unmapped_error",
			err:         errors.New("connection reset"),
			expectedMsg: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			if tt.expectedError != nil {
				assert.ErrorIs(t, got, tt.expectedError)
			}
			if tt.expectedMsg != "" {
				assert.Contains(t, got.Error(), tt.expectedMsg)
			}
		})
	}
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode})
	assert.True(t, IsUniqueViolation(unique))

	err := MapUniqueViolation(unique, store.ErrCardStateExists)
	assert.ErrorIs(t, err, store.ErrCardStateExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = MapUniqueViolation(&pgconn.PgError{Code: checkViolationCode}, store.ErrCardStateExists)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NotErrorIs(t, err, store.ErrDuplicate)
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(mockResult{rowsAffected: 1}, nil))
	assert.ErrorIs(t, CheckRowsAffected(mockResult{}, nil), store.ErrNotFound)
	assert.ErrorIs(t, CheckRowsAffected(mockResult{}, store.ErrSessionNotFound), store.ErrSessionNotFound)
	assert.ErrorContains(t, CheckRowsAffected(mockResult{err: errors.New("boom")}, nil), "failed to get rows affected")
	assert.Error(t, CheckRowsAffected(nil, nil))
}

func TestCheckVersionedUpdate(t *testing.T) {
	t.Parallel()

	const existsQuery = `SELECT EXISTS (SELECT 1 FROM review_sessions WHERE id = $1)`

	tests := []struct {
		name     string
		affected int64
		exists   *bool
		expected error
	}{
		{name: "row updated", affected: 1},
		{name: "stale version", exists: boolPtr(true), expected: store.ErrVersionConflict},
		{name: "missing row", exists: boolPtr(false), expected: store.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			if tt.exists != nil {
				mock.ExpectQuery(`SELECT EXISTS`).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(*tt.exists))
			}

			err = checkVersionedUpdate(context.Background(), db, mockResult{rowsAffected: tt.affected},
				existsQuery, "id", store.ErrSessionNotFound)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func boolPtr(b bool) *bool {
	return &b
}
