package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestEmployeeRepository_UpdateBalances(t *testing.T) {
	setup := NewTestDatabase(t)
	setup.createEmployee(t, "E001", "ENG", "Employee")

	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	emp, err := repo.GetByID(ctx, "E001")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(12).Equal(emp.Balances.PaidLeaves))

	emp.Balances.PaidLeaves = decimal.NewFromFloat(10.5)
	require.NoError(t, repo.UpdateBalances(ctx, emp.ID, emp.Balances))

	emp, err = repo.GetByID(ctx, "E001")
	require.NoError(t, err)
	assert.Equal(t, "10.5", emp.Balances.PaidLeaves.String())

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAttendanceRepository_UpsertVersionCheck(t *testing.T) {
	setup := NewTestDatabase(t)
	setup.createEmployee(t, "E001", "ENG", "Employee")

	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	in := clock.At(9, 5, 0)
	record := attendance.Attendance{
		EmployeeID: "E001",
		LogDate:    day,
		TimeIn:     &in,
		Status:     status.Whole(status.Present()),
	}

	created, err := repo.Upsert(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)

	// Two writers that both saw "no record".
	_, err = repo.Upsert(ctx, record)
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)

	out := clock.At(18, 0, 0)
	created.TimeOut = &out
	updated, err := repo.Upsert(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	_, err = repo.Upsert(ctx, created)
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)

	stored, err := repo.GetByEmployeeAndDate(ctx, "E001", day)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "09:05:00", stored.TimeIn.String())
	assert.Equal(t, "18:00:00", stored.TimeOut.String())
	assert.Equal(t, "Present", stored.Status.String())
}

func TestHolidayRepository_DuplicateDate(t *testing.T) {
	setup := NewTestDatabase(t)

	ctx := context.Background()
	repo := postgresql.NewHolidayRepository(setup.DB)

	_, err := repo.Create(ctx, holiday.Holiday{Date: day, Type: holiday.TypeYearly, Name: "Founders Day"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, holiday.Holiday{Date: day, Type: holiday.TypeRestricted, Name: "Other"})
	assert.ErrorIs(t, err, holiday.ErrHolidayExists)

	holidays, err := repo.ListBetween(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Founders Day", holidays[0].Name)
}

func TestDeductionRepository_KeyIsUnique(t *testing.T) {
	setup := NewTestDatabase(t)
	setup.createEmployee(t, "E001", "ENG", "Employee")

	ctx := context.Background()
	repo := postgresql.NewDeductionRepository(setup.DB)

	got, err := repo.GetByKey(ctx, balance.LeaveKey("L1"))
	require.NoError(t, err)
	assert.Nil(t, got)

	d := balance.Deduction{
		Key:        balance.LeaveKey("L1"),
		EmployeeID: "E001",
		Days:       decimal.NewFromInt(2),
		Paid:       decimal.NewFromInt(2),
		CreatedAt:  day,
	}
	_, err = repo.Create(ctx, d)
	require.NoError(t, err)

	_, err = repo.Create(ctx, d)
	assert.ErrorIs(t, err, balance.ErrDuplicateDeduction)

	got, err = repo.GetByKey(ctx, d.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2", got.Paid.String())
}

func TestODRepository_StatusAndPunches(t *testing.T) {
	setup := NewTestDatabase(t)
	setup.createEmployee(t, "E001", "ENG", "Employee")

	ctx := context.Background()
	repo := postgresql.NewODRepository(setup.DB)

	submitter := user.Actor{EmployeeID: "E001", Role: user.RoleEmployee}
	initial := approval.ODChain.Initial(submitter, day)

	created, err := repo.Create(ctx, od.OD{
		EmployeeID:     "E001",
		DepartmentID:   "ENG",
		DateOut:        day,
		TimeOut:        clock.At(11, 0, 0),
		DateIn:         day,
		TimeIn:         clock.At(15, 0, 0),
		Purpose:        "Client visit",
		PlaceUnitVisit: "Plant 2",
		Status:         initial.Values,
		SubmitterRole:  user.RoleEmployee,
		History:        initial.Events,
	})
	require.NoError(t, err)

	stage, ok := approval.ODChain.PendingStage(initial.Values)
	require.True(t, ok)
	filter := od.ODFilter{PendingStage: &stage, Page: 1, Limit: 10}
	pending, total, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, initial.Values, pending[0].Status)

	in, out := "11:02:00", "14:55:00"
	require.NoError(t, repo.RecordActualPunch(ctx, created.ID, od.PunchPair{Date: "2025-03-10", In: &in}))
	require.NoError(t, repo.RecordActualPunch(ctx, created.ID, od.PunchPair{Date: "2025-03-10", In: &in, Out: &out}))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stored.ActualPunchTimes, 1)
	assert.Equal(t, out, *stored.ActualPunchTimes[0].Out)

	stale := stored
	stored.History = append(stored.History, approval.Event{Stage: stage, Status: approval.Allowed, ActorID: "A001", ActorRole: user.RoleAdmin, At: day})
	_, err = repo.Update(ctx, stored)
	require.NoError(t, err)

	_, err = repo.Update(ctx, stale)
	assert.True(t, errors.Is(err, approval.ErrConflict))

	covering, err := repo.ListActiveCovering(ctx, "E001", day, day)
	require.NoError(t, err)
	assert.Len(t, covering, 1)
}
