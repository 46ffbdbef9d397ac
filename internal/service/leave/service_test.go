package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*LeaveServiceImpl, *servicetest.Env) {
	t.Helper()
	env := servicetest.NewEnv(t, now)
	return NewLeaveService(env.Store, env.Leaves, env.Employees, env.HolidayService, env.Ledger, env.Flow), env
}

func casual(from, to string) leave.SegmentRequest {
	return leave.SegmentRequest{LeaveType: string(leave.TypeCasual), From: from, To: to, Reason: "Family function"}
}

func unpaid(from, to string) leave.SegmentRequest {
	return leave.SegmentRequest{LeaveType: string(leave.TypeLWP), From: from, To: to, Reason: "Personal work"}
}

func submit(t *testing.T, svc *LeaveServiceImpl, employeeID string, role user.Role, segments ...leave.SegmentRequest) []leave.LeaveResponse {
	t.Helper()
	resp, err := svc.Submit(servicetest.As(employeeID, role), leave.SubmitLeaveRequest{Segments: segments})
	require.NoError(t, err)
	return resp
}

func decide(svc *LeaveServiceImpl, actorID string, role user.Role, leaveID, stage, decision, reason string, rejected ...string) (leave.LeaveResponse, error) {
	return svc.Decide(servicetest.As(actorID, role), leave.DecideLeaveRequest{
		LeaveID:       leaveID,
		Stage:         stage,
		Decision:      decision,
		Reason:        reason,
		RejectedDates: rejected,
	})
}

func TestSubmit_InitialStages(t *testing.T) {
	svc, env := newService(t)

	resp := submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-13"))
	require.Len(t, resp, 1)
	assert.Equal(t, "2", resp[0].Days)
	assert.Equal(t, map[string]approval.Value{"hod": approval.Pending, "ceo": approval.NotApplicable, "admin": approval.NotApplicable}, resp[0].Status)
	assert.Contains(t, env.Notifier.Recipients(), servicetest.HOD)

	// an HOD's own leave skips the HOD stage
	resp = submit(t, svc, servicetest.HOD, user.RoleHOD, unpaid("2025-03-12", "2025-03-12"))
	assert.Equal(t, approval.Submitted, resp[0].Status["hod"])
	assert.Equal(t, approval.Pending, resp[0].Status["ceo"])
}

func TestSubmit_CompositeSegments(t *testing.T) {
	svc, _ := newService(t)
	afternoon := string(leave.SessionAfternoon)

	// Saturday to Monday: Sunday is free
	first := casual("2025-03-15", "2025-03-17")
	second := casual("2025-03-19", "2025-03-19")
	second.FromDuration = string(leave.DurationHalf)
	second.FromSession = &afternoon

	resp := submit(t, svc, servicetest.Employee1, user.RoleEmployee, first, second)

	require.Len(t, resp, 2)
	assert.Equal(t, "2", resp[0].Days)
	assert.Equal(t, "0.5", resp[1].Days)
	assert.Equal(t, resp[0].CompositeLeaveID, resp[1].CompositeLeaveID)
	assert.NotEqual(t, resp[0].ID, resp[1].ID)
}

func TestSubmit_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("segments overlap", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{
			Segments: []leave.SegmentRequest{casual("2025-03-12", "2025-03-13"), casual("2025-03-13", "2025-03-14")},
		})
		assert.ErrorIs(t, err, leave.ErrSegmentsOverlap)
	})

	t.Run("existing leave", func(t *testing.T) {
		svc, _ := newService(t)
		submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-13"))
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{
			Segments: []leave.SegmentRequest{casual("2025-03-13", "2025-03-13")},
		})
		assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{
			Segments: []leave.SegmentRequest{casual("2025-03-10", "2025-03-15")},
		})
		assert.ErrorIs(t, err, balance.ErrInsufficientBalance)

		var balErr *balance.InsufficientBalanceError
		require.ErrorAs(t, err, &balErr)
		assert.Equal(t, balance.CounterPaidLeaves, balErr.Counter)
		assert.True(t, decimal.NewFromInt(6).Equal(balErr.Requested))
	})

	t.Run("only non-working days", func(t *testing.T) {
		svc, env := newService(t)
		_, err := env.Holidays.Create(ctx, holiday.Holiday{Date: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), Name: "Holi", Type: holiday.TypeYearly})
		require.NoError(t, err)
		_, err = svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{
			Segments: []leave.SegmentRequest{casual("2025-03-16", "2025-03-17")},
		})
		assert.ErrorIs(t, err, leave.ErrNoWorkingDays)
	})

	t.Run("medical twice in one request", func(t *testing.T) {
		svc, _ := newService(t)
		cert := "file-123"
		a := leave.SegmentRequest{LeaveType: string(leave.TypeMedical), From: "2025-03-12", To: "2025-03-12", Reason: "Fever", MedicalCertificateID: &cert}
		b := a
		b.From, b.To = "2025-03-20", "2025-03-20"
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{Segments: []leave.SegmentRequest{a, b}})
		assert.ErrorIs(t, err, leave.ErrMedicalAlreadyUsed)
	})

	t.Run("restricted holiday on a working day", func(t *testing.T) {
		svc, _ := newService(t)
		seg := leave.SegmentRequest{LeaveType: string(leave.TypeRestrictedHolidays), From: "2025-03-12", To: "2025-03-12", Reason: "Festival"}
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{Segments: []leave.SegmentRequest{seg}})
		assert.ErrorIs(t, err, leave.ErrNotRestrictedHoliday)
	})

	t.Run("charge holder on leave", func(t *testing.T) {
		svc, _ := newService(t)
		submit(t, svc, servicetest.Employee2, user.RoleEmployee, unpaid("2025-03-12", "2025-03-12"))

		seg := casual("2025-03-12", "2025-03-12")
		holder := servicetest.Employee2
		seg.ChargeGivenTo = &holder
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{Segments: []leave.SegmentRequest{seg}})
		assert.ErrorIs(t, err, leave.ErrChargeHolderOnLeave)
	})

	t.Run("malformed input", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Submit(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.SubmitLeaveRequest{
			Segments: []leave.SegmentRequest{{LeaveType: "Sabbatical", From: "12-03-2025", To: "2025-03-12"}},
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "segments[0].leave_type")
		assert.Contains(t, verrs.ToMap(), "segments[0].from")
	})
}

func TestDecide_CEORejectsAfterHODApproves(t *testing.T) {
	svc, _ := newService(t)
	l := submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-13"))[0]

	resp, err := decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Approved", "")
	require.NoError(t, err)
	assert.Equal(t, approval.Approved, resp.Status["hod"])
	assert.Equal(t, approval.Pending, resp.Status["ceo"])

	_, err = decide(svc, servicetest.CEO, user.RoleCEO, l.ID, "ceo", "Rejected", "")
	assert.ErrorIs(t, err, approval.ErrMissingReason)

	resp, err = decide(svc, servicetest.CEO, user.RoleCEO, l.ID, "ceo", "Rejected", "Project deadline")
	require.NoError(t, err)
	assert.Equal(t, approval.Approved, resp.Status["hod"])
	assert.Equal(t, approval.Rejected, resp.Status["ceo"])
	assert.Equal(t, approval.NotApplicable, resp.Status["admin"])
	assert.Len(t, resp.History, 2)

	_, err = decide(svc, servicetest.Admin, user.RoleAdmin, l.ID, "admin", "Acknowledged", "")
	assert.ErrorIs(t, err, approval.ErrOutOfOrder)

	var ruleErr *approval.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "admin", ruleErr.Stage)
}

func TestDecide_StageGuards(t *testing.T) {
	svc, _ := newService(t)
	l := submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-12"))[0]

	_, err := decide(svc, servicetest.OtherHOD, user.RoleHOD, l.ID, "hod", "Approved", "")
	assert.ErrorIs(t, err, leave.ErrNotDepartmentApprover)

	_, err = decide(svc, servicetest.CEO, user.RoleCEO, l.ID, "ceo", "Approved", "")
	assert.ErrorIs(t, err, approval.ErrOutOfOrder)

	_, err = decide(svc, servicetest.Admin, user.RoleAdmin, l.ID, "hod", "Approved", "")
	assert.ErrorIs(t, err, approval.ErrForbiddenRole)

	_, err = decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Approved", "", "2025-03-12")
	assert.ErrorIs(t, err, leave.ErrRejectedDatesStage)

	_, err = decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Approved", "")
	require.NoError(t, err)
	_, err = decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Rejected", "changed my mind")
	assert.ErrorIs(t, err, approval.ErrAlreadyDecided)
}

func TestDecide_PartialApprovalDeductsOnce(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	l := submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-14"))[0]

	_, err := decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Approved", "")
	require.NoError(t, err)

	_, err = decide(svc, servicetest.CEO, user.RoleCEO, l.ID, "ceo", "Approved", "", "2025-03-20")
	assert.ErrorIs(t, err, leave.ErrInvalidRejectedDates)

	resp, err := decide(svc, servicetest.CEO, user.RoleCEO, l.ID, "ceo", "Approved", "", "2025-03-13")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-12", "2025-03-14"}, resp.ApprovedDates)
	assert.Equal(t, []string{"2025-03-13"}, resp.RejectedDates)
	assert.Equal(t, approval.Pending, resp.Status["admin"])

	emp, err := env.Employees.GetByID(ctx, servicetest.Employee1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(emp.Balances.PaidLeaves), "nothing is charged before acknowledgement")

	resp, err = decide(svc, servicetest.Admin, user.RoleAdmin, l.ID, "admin", "Acknowledged", "")
	require.NoError(t, err)
	assert.Equal(t, approval.Acknowledged, resp.Status["admin"])

	emp, err = env.Employees.GetByID(ctx, servicetest.Employee1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(emp.Balances.PaidLeaves))

	// unlock and acknowledge again: the deduction is not repeated
	_, err = svc.Unlock(servicetest.As(servicetest.Admin, user.RoleAdmin), leave.UnlockLeaveRequest{LeaveID: l.ID, Stage: "admin", Reason: "wrong remarks"})
	require.NoError(t, err)
	_, err = decide(svc, servicetest.Admin, user.RoleAdmin, l.ID, "admin", "Acknowledged", "")
	require.NoError(t, err)

	emp, err = env.Employees.GetByID(ctx, servicetest.Employee1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(emp.Balances.PaidLeaves))

	deductions, err := env.Deductions.ListByEmployee(ctx, servicetest.Employee1)
	require.NoError(t, err)
	assert.Len(t, deductions, 1)
}

func TestDecide_LockedAfterThirtyDays(t *testing.T) {
	svc, env := newService(t)
	l := submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-12"))[0]
	_, err := decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Rejected", "Short staffed")
	require.NoError(t, err)

	env.Flow.SetClock(func() time.Time { return now.AddDate(0, 0, 40) })

	_, err = decide(svc, servicetest.CEO, user.RoleCEO, l.ID, "ceo", "Approved", "")
	assert.ErrorIs(t, err, approval.ErrExpired)

	// unlock is the override
	resp, err := svc.Unlock(servicetest.As(servicetest.CEO, user.RoleCEO), leave.UnlockLeaveRequest{LeaveID: l.ID, Stage: "hod", Reason: "Reconsidered"})
	require.NoError(t, err)
	assert.Equal(t, approval.Pending, resp.Status["hod"])
	assert.Equal(t, approval.NotApplicable, resp.Status["ceo"])

	_, err = decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Approved", "")
	assert.NoError(t, err)
}

func TestUnlock_RequiresTerminalAndRole(t *testing.T) {
	svc, _ := newService(t)
	l := submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-12"))[0]

	_, err := svc.Unlock(servicetest.As(servicetest.Admin, user.RoleAdmin), leave.UnlockLeaveRequest{LeaveID: l.ID, Stage: "hod", Reason: "x"})
	assert.ErrorIs(t, err, approval.ErrNotTerminal)

	_, err = decide(svc, servicetest.HOD, user.RoleHOD, l.ID, "hod", "Rejected", "No cover")
	require.NoError(t, err)

	_, err = svc.Unlock(servicetest.As(servicetest.HOD, user.RoleHOD), leave.UnlockLeaveRequest{LeaveID: l.ID, Stage: "hod", Reason: "x"})
	assert.ErrorIs(t, err, approval.ErrForbiddenRole)
}

func TestGetAndListLeaves(t *testing.T) {
	svc, _ := newService(t)
	l := submit(t, svc, servicetest.Employee1, user.RoleEmployee, casual("2025-03-12", "2025-03-12"))[0]
	submit(t, svc, servicetest.OtherHOD, user.RoleHOD, unpaid("2025-03-12", "2025-03-12"))

	_, err := svc.GetLeave(servicetest.As(servicetest.Employee2, user.RoleEmployee), l.ID)
	assert.ErrorIs(t, err, leave.ErrUnauthorized)

	got, err := svc.GetLeave(servicetest.As(servicetest.HOD, user.RoleHOD), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)

	list, err := svc.ListLeaves(servicetest.As(servicetest.HOD, user.RoleHOD), leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)

	list, err = svc.ListLeaves(servicetest.As(servicetest.CEO, user.RoleCEO), leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)

	mine, err := svc.GetMyLeaves(servicetest.As(servicetest.OtherHOD, user.RoleHOD), leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)

	_, err = svc.ListLeaves(servicetest.As(servicetest.Employee1, user.RoleEmployee), leave.LeaveFilter{})
	assert.ErrorIs(t, err, leave.ErrUnauthorized)
}
