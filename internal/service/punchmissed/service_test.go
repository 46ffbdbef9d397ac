package punchmissed

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	attendancesvc "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now    = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	missed = time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (*servicetest.Env, *PunchMissedServiceImpl) {
	t.Helper()

	env := servicetest.NewEnv(t, now)
	corrector := attendancesvc.NewAttendanceService(env.Store, env.Attendances, env.Punches, env.Employees,
		env.Leaves, env.ODs, env.HolidayService, env.Ledger, env.Flow, attendancesvc.Config{})
	return env, NewPunchMissedService(env.Store, env.PunchMissed, env.Employees, corrector, env.Flow)
}

func submit(t *testing.T, svc *PunchMissedServiceImpl, employeeID, when, input string) punchmissed.PunchMissedResponse {
	t.Helper()
	resp, err := svc.Submit(servicetest.As(employeeID, user.RoleEmployee), punchmissed.SubmitPunchMissedRequest{
		PunchMissedDate: missed.Format(clock.DateLayout),
		When:            when,
		YourInput:       input,
		Reason:          "biometric device was offline",
	})
	require.NoError(t, err)
	return resp
}

func decide(ctx context.Context, svc *PunchMissedServiceImpl, id, stage, decision, reason string) (punchmissed.PunchMissedResponse, error) {
	return svc.Decide(ctx, punchmissed.DecidePunchMissedRequest{
		PunchMissedID: id,
		Stage:         stage,
		Decision:      decision,
		Reason:        reason,
	})
}

func TestSubmit_InitialStages(t *testing.T) {
	env, svc := newService(t)

	resp := submit(t, svc, servicetest.Employee1, "Time IN", "09:05")

	assert.Equal(t, "2025-03-07", resp.PunchMissedDate)
	assert.Equal(t, "09:05:00", resp.YourInput)
	assert.Nil(t, resp.AdminInput)
	assert.Equal(t, map[string]approval.Value{
		"hod": approval.Pending, "admin": approval.Pending, "ceo": approval.Pending,
	}, resp.Status)
	assert.Contains(t, env.Notifier.Recipients(), servicetest.HOD)

	emp, err := env.Employees.GetByID(context.Background(), servicetest.Employee1)
	require.NoError(t, err)
	require.NotNil(t, emp.LastPunchMissedSubmission)
	assert.True(t, emp.SubmittedPunchMissedIn(now))
}

func TestSubmit_Rejections(t *testing.T) {
	t.Run("once per month", func(t *testing.T) {
		_, svc := newService(t)
		submit(t, svc, servicetest.Employee1, "Time IN", "09:05")

		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), punchmissed.SubmitPunchMissedRequest{
			PunchMissedDate: "2025-03-03",
			When:            "Time OUT",
			YourInput:       "17:40",
			Reason:          "forgot to punch out",
		})
		assert.ErrorIs(t, err, punchmissed.ErrMonthlyLimitReached)
	})

	t.Run("future date", func(t *testing.T) {
		_, svc := newService(t)
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), punchmissed.SubmitPunchMissedRequest{
			PunchMissedDate: "2025-03-11",
			When:            "Time IN",
			YourInput:       "09:00",
			Reason:          "planned",
		})
		assert.ErrorIs(t, err, punchmissed.ErrFutureDate)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, svc := newService(t)
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), punchmissed.SubmitPunchMissedRequest{
			PunchMissedDate: "07-03-2025",
			When:            "Lunch",
			YourInput:       "9am",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "punch_missed_date")
		assert.Contains(t, err.Error(), "when")
		assert.Contains(t, err.Error(), "your_input")
		assert.Contains(t, err.Error(), "reason")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, svc := newService(t)
		_, err := svc.Submit(context.Background(), punchmissed.SubmitPunchMissedRequest{})
		assert.ErrorIs(t, err, user.ErrUnauthenticated)
	})
}

func TestDecide_FullChainCorrectsAttendance(t *testing.T) {
	env, svc := newService(t)
	pm := submit(t, svc, servicetest.Employee1, "Time IN", "09:05")

	_, err := decide(servicetest.As(servicetest.HOD, user.RoleHOD), svc, pm.ID, "hod", "Approved", "")
	require.NoError(t, err)
	_, err = decide(servicetest.As(servicetest.Admin, user.RoleAdmin), svc, pm.ID, "admin", "Approved", "")
	require.NoError(t, err)

	before, err := env.Attendances.GetByEmployeeAndDate(context.Background(), servicetest.Employee1, missed)
	require.NoError(t, err)
	assert.Nil(t, before)

	resp, err := decide(servicetest.As(servicetest.CEO, user.RoleCEO), svc, pm.ID, "ceo", "Approved", "")
	require.NoError(t, err)
	assert.Equal(t, approval.Approved, resp.Status["ceo"])
	assert.Len(t, resp.History, 3)

	a, err := env.Attendances.GetByEmployeeAndDate(context.Background(), servicetest.Employee1, missed)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.NotNil(t, a.TimeIn)
	assert.Equal(t, "09:05:00", a.TimeIn.String())
	assert.Equal(t, "Present", a.Status.String())
	assert.Nil(t, a.LAApproval)
}

func TestDecide_AdminInputOverridesClaim(t *testing.T) {
	env, svc := newService(t)
	pm := submit(t, svc, servicetest.Employee1, "Time OUT", "18:00")

	_, err := decide(servicetest.As(servicetest.HOD, user.RoleHOD), svc, pm.ID, "hod", "Approved", "")
	require.NoError(t, err)

	corrected := "17:45"
	resp, err := svc.Decide(servicetest.As(servicetest.Admin, user.RoleAdmin), punchmissed.DecidePunchMissedRequest{
		PunchMissedID: pm.ID,
		Stage:         "admin",
		Decision:      "Approved",
		AdminInput:    &corrected,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.AdminInput)
	assert.Equal(t, "17:45:00", *resp.AdminInput)

	_, err = decide(servicetest.As(servicetest.CEO, user.RoleCEO), svc, pm.ID, "ceo", "Approved", "")
	require.NoError(t, err)

	a, err := env.Attendances.GetByEmployeeAndDate(context.Background(), servicetest.Employee1, missed)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.NotNil(t, a.TimeOut)
	assert.Equal(t, "17:45:00", a.TimeOut.String())
	assert.Equal(t, 15, a.OvertimeMinutes)
}

func TestDecide_Guards(t *testing.T) {
	env, svc := newService(t)
	pm := submit(t, svc, servicetest.Employee1, "Time IN", "09:05")

	corrected := "09:00"
	_, err := svc.Decide(servicetest.As(servicetest.HOD, user.RoleHOD), punchmissed.DecidePunchMissedRequest{
		PunchMissedID: pm.ID,
		Stage:         "hod",
		Decision:      "Approved",
		AdminInput:    &corrected,
	})
	assert.ErrorIs(t, err, punchmissed.ErrAdminInputStage)

	_, err = decide(servicetest.As(servicetest.OtherHOD, user.RoleHOD), svc, pm.ID, "hod", "Approved", "")
	assert.ErrorIs(t, err, punchmissed.ErrNotDepartmentApprover)

	_, err = decide(servicetest.As(servicetest.Admin, user.RoleAdmin), svc, pm.ID, "admin", "Approved", "")
	assert.ErrorIs(t, err, approval.ErrOutOfOrder)

	_, err = decide(servicetest.As(servicetest.HOD, user.RoleHOD), svc, pm.ID, "hod", "Rejected", "")
	assert.ErrorIs(t, err, approval.ErrMissingReason)

	resp, err := decide(servicetest.As(servicetest.HOD, user.RoleHOD), svc, pm.ID, "hod", "Rejected", "no evidence of attendance")
	require.NoError(t, err)
	assert.Equal(t, approval.NotApplicable, resp.Status["admin"])
	assert.Equal(t, approval.NotApplicable, resp.Status["ceo"])

	a, err := env.Attendances.GetByEmployeeAndDate(context.Background(), servicetest.Employee1, missed)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestUnlock_ReopensRejectedRequest(t *testing.T) {
	_, svc := newService(t)
	pm := submit(t, svc, servicetest.Employee1, "Time IN", "09:05")
	_, err := decide(servicetest.As(servicetest.HOD, user.RoleHOD), svc, pm.ID, "hod", "Rejected", "no evidence")
	require.NoError(t, err)

	_, err = svc.Unlock(servicetest.As(servicetest.HOD, user.RoleHOD), punchmissed.UnlockPunchMissedRequest{
		PunchMissedID: pm.ID, Stage: "hod", Reason: "gate log found",
	})
	assert.ErrorIs(t, err, approval.ErrForbiddenRole)

	resp, err := svc.Unlock(servicetest.As(servicetest.Admin, user.RoleAdmin), punchmissed.UnlockPunchMissedRequest{
		PunchMissedID: pm.ID, Stage: "hod", Reason: "gate log found",
	})
	require.NoError(t, err)
	assert.Equal(t, approval.Pending, resp.Status["hod"])
}

func TestListPunchMissed_Scope(t *testing.T) {
	_, svc := newService(t)
	pm := submit(t, svc, servicetest.Employee1, "Time IN", "09:05")
	submit(t, svc, servicetest.Employee2, "Time OUT", "17:30")

	mine, err := svc.ListPunchMissed(servicetest.As(servicetest.Employee2, user.RoleEmployee), punchmissed.PunchMissedFilter{})
	require.NoError(t, err)
	require.Len(t, mine.Requests, 1)
	assert.Equal(t, servicetest.Employee2, mine.Requests[0].EmployeeID)

	dept, err := svc.ListPunchMissed(servicetest.As(servicetest.OtherHOD, user.RoleHOD), punchmissed.PunchMissedFilter{})
	require.NoError(t, err)
	assert.Empty(t, dept.Requests)

	all, err := svc.ListPunchMissed(servicetest.As(servicetest.Admin, user.RoleAdmin), punchmissed.PunchMissedFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)

	_, err = svc.GetPunchMissed(servicetest.As(servicetest.Employee2, user.RoleEmployee), pm.ID)
	assert.ErrorIs(t, err, punchmissed.ErrUnauthorized)

	got, err := svc.GetPunchMissed(servicetest.As(servicetest.HOD, user.RoleHOD), pm.ID)
	require.NoError(t, err)
	assert.Equal(t, pm.ID, got.ID)
}
