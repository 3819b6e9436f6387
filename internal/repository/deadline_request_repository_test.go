package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveDeadlineRequestMovesTask(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDeadlineRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE deadline_requests SET status = 'approved'").
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "requested_new_deadline"}).AddRow("t1", "2026-10-01"))
	mock.ExpectExec("UPDATE tasks SET deadline").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	decided, err := repo.Approve(context.Background(), "d1", "mgr1", nil)
	require.NoError(t, err)
	assert.True(t, decided)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveDeadlineRequestAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDeadlineRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE deadline_requests SET status = 'approved'").
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "requested_new_deadline"}))
	mock.ExpectRollback()

	decided, err := repo.Approve(context.Background(), "d1", "mgr1", nil)
	require.NoError(t, err)
	assert.False(t, decided)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPendingForTask(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDeadlineRequestRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery("SELECT COUNT").WithArgs("t1").WillReturnRows(rows)

	pending, err := repo.HasPendingForTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
