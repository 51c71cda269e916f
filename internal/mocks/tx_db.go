package mocks

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// NewTxDB returns a sqlmock database for services that only begin and end
// transactions through store.RunInTransaction. Callers queue the expected
// ExpectBegin/ExpectCommit/ExpectRollback calls; unmet expectations fail the
// test at cleanup.
func NewTxDB(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	return db, mock
}

// ExpectCommittedTx queues n begin/commit pairs.
func ExpectCommittedTx(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

// ExpectRolledBackTx queues one begin/rollback pair.
func ExpectRolledBackTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}
