package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operai/workforce-api/internal/models"
)

func TestDecideLeaveApprovesPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectExec("UPDATE leaves SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.Decide(context.Background(), "l1", models.LeaveStatusApproved, "mgr1", nil)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideLeaveAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectExec("UPDATE leaves SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.Decide(context.Background(), "l1", models.LeaveStatusRejected, "mgr1", nil)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOverlap(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("u1", "2026-09-01", "2026-09-03").
		WillReturnRows(rows)

	overlap, err := repo.HasOverlap(context.Background(), "u1", "2026-09-01", "2026-09-03")
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelLeavePending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectExec("UPDATE leaves SET status = 'cancelled'").
		WillReturnResult(sqlmock.NewResult(0, 1))

	cancelled, err := repo.Cancel(context.Background(), "l1")
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
