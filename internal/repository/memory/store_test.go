package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func TestWithinTransaction_RollsBack(t *testing.T) {
	s := NewStore()
	employees := NewEmployeeRepository(s)
	require.NoError(t, employees.Seed(context.Background(), employee.Employee{ID: "E001", DepartmentID: "ENG"}))

	boom := errors.New("boom")
	err := s.WithinTransaction(context.Background(), func(txCtx context.Context) error {
		require.NoError(t, employees.SetLastPunchMissedSubmission(txCtx, "E001", day))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	emp, err := employees.GetByID(context.Background(), "E001")
	require.NoError(t, err)
	assert.Nil(t, emp.LastPunchMissedSubmission)
}

func TestWithinTransaction_NestedJoinsOuter(t *testing.T) {
	s := NewStore()
	employees := NewEmployeeRepository(s)
	require.NoError(t, employees.Seed(context.Background(), employee.Employee{ID: "E001", DepartmentID: "ENG"}))

	err := s.WithinTransaction(context.Background(), func(txCtx context.Context) error {
		if err := s.WithinTransaction(txCtx, func(inner context.Context) error {
			return employees.SetLastPunchMissedSubmission(inner, "E001", day)
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)

	emp, err := employees.GetByID(context.Background(), "E001")
	require.NoError(t, err)
	assert.Nil(t, emp.LastPunchMissedSubmission, "inner write is undone with the outer transaction")
}

func TestWithinTransaction_RollsBackOnPanic(t *testing.T) {
	s := NewStore()
	employees := NewEmployeeRepository(s)
	require.NoError(t, employees.Seed(context.Background(), employee.Employee{ID: "E001", DepartmentID: "ENG"}))

	assert.Panics(t, func() {
		_ = s.WithinTransaction(context.Background(), func(txCtx context.Context) error {
			_ = employees.SetLastPunchMissedSubmission(txCtx, "E001", day)
			panic("unexpected")
		})
	})

	emp, err := employees.GetByID(context.Background(), "E001")
	require.NoError(t, err)
	assert.Nil(t, emp.LastPunchMissedSubmission)
}

func TestAttendanceUpsert_Version(t *testing.T) {
	repo := NewAttendanceRepository(NewStore())
	ctx := context.Background()

	created, err := repo.Upsert(ctx, attendance.Attendance{
		EmployeeID: "E001",
		LogDate:    day.Add(10 * time.Hour),
		Status:     status.Whole(status.AWI()),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, day, created.LogDate)

	stale := created
	created.Status = status.Whole(status.Present())
	updated, err := repo.Upsert(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, created.ID, updated.ID)

	_, err = repo.Upsert(ctx, stale)
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)

	_, err = repo.Upsert(ctx, attendance.Attendance{EmployeeID: "E001", LogDate: day, Status: status.Whole(status.AWI())})
	assert.ErrorIs(t, err, attendance.ErrVersionConflict, "a second new record for the same day")

	got, err := repo.GetByEmployeeAndDate(ctx, "E001", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Present", got.Status.String())

	missing, err := repo.GetByEmployeeAndDate(ctx, "E002", day)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPunchLogs_Unprocessed(t *testing.T) {
	repo := NewRawPunchLogRepository(NewStore())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, []attendance.RawPunchLog{
		{EmployeeID: "E001", LogDate: day, LogTime: "17:40:00", Direction: attendance.DirectionOut},
		{EmployeeID: "E001", LogDate: day, LogTime: "08:55:00", Direction: attendance.DirectionIn},
		{EmployeeID: "E001", LogDate: day.AddDate(0, 0, 1), LogTime: "09:00:00", Direction: attendance.DirectionIn},
		{EmployeeID: "E002", LogDate: day, LogTime: "09:00:00", Direction: attendance.DirectionIn},
	}))

	logs, err := repo.ListUnprocessed(ctx, "E001", day)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "08:55:00", logs[0].LogTime)

	require.NoError(t, repo.MarkProcessed(ctx, []string{logs[0].ID}))
	logs, err = repo.ListUnprocessed(ctx, "E001", day)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, attendance.DirectionOut, logs[0].Direction)
}

func TestFault(t *testing.T) {
	s := NewStore()
	repo := NewAttendanceRepository(s)
	s.SetFault(func(op, key string) error {
		if op == "attendance.GetByEmployeeAndDate" && key == "E001" {
			return attendance.ErrTransientIO
		}
		return nil
	})

	_, err := repo.GetByEmployeeAndDate(context.Background(), "E001", day)
	assert.ErrorIs(t, err, attendance.ErrTransientIO)
	_, err = repo.GetByEmployeeAndDate(context.Background(), "E002", day)
	assert.NoError(t, err)

	s.SetFault(nil)
	_, err = repo.GetByEmployeeAndDate(context.Background(), "E001", day)
	assert.NoError(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, paginate(items, 1, 2))
	assert.Equal(t, []int{5}, paginate(items, 3, 2))
	assert.Equal(t, []int{}, paginate(items, 4, 2))
	assert.Equal(t, items, paginate(items, 0, 0))
}
