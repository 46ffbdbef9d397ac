package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC) // a Wednesday

func tod(s string) *clock.TimeOfDay {
	t := clock.MustParse(s)
	return &t
}

func TestRules_Derive_Punches(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		in, out  *clock.TimeOfDay
		want     string
		ot       int
		laStatus *attendance.LAApproval
	}{
		{name: "full day", in: tod("08:45:00"), out: tod("17:45:00"), want: "Present", ot: 15},
		{name: "on time without out", in: tod("09:00:00"), want: "Present(-)"},
		{name: "left early", in: tod("08:30:00"), out: tod("16:00:00"), want: "Present(-)"},
		{name: "no punches", want: "AWI"},
		{name: "out only", out: tod("18:00:00"), want: "Present(-)", ot: 30},
		{name: "late within grace", in: tod("09:10:00"), out: tod("17:30:00"), want: "FN: Present [LA: Approval Pending] & AN: Present", laStatus: ptr(attendance.LAPending)},
		{name: "late past grace", in: tod("09:40:00"), out: tod("17:30:00"), want: "FN: Present (LA) & AN: Present"},
		{name: "late without out", in: tod("09:05:00"), want: "FN: Present [LA: Approval Pending] & AN: Present(-)", laStatus: ptr(attendance.LAPending)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rules.Derive(day, tt.in, tt.out, nil, nil, nil)
			require.NoError(t, d.Status.Validate())
			assert.Equal(t, tt.want, d.Status.String())
			assert.Equal(t, tt.ot, d.OvertimeMinutes)
			assert.Equal(t, tt.laStatus, d.LAApproval)
			assert.Nil(t, d.HalfDay)
		})
	}
}

func TestRules_Derive_KeepsLateArrivalDecision(t *testing.T) {
	rules := DefaultRules()
	allowed := attendance.LAAllowed
	denied := attendance.LADenied

	previous := &attendance.Attendance{
		Status:     status.Halves(status.LateArrival(status.LAAllowed), status.PresentOpen()),
		LAApproval: &allowed,
	}
	d := rules.Derive(day, tod("09:10:00"), tod("17:40:00"), previous, nil, nil)
	assert.Equal(t, "FN: Present [LA: Allowed] & AN: Present", d.Status.String())
	assert.Equal(t, &allowed, d.LAApproval)

	previous = &attendance.Attendance{
		Status:     status.Halves(status.LateArrivalDeducted(status.DeductCL), status.Present()),
		LAApproval: &denied,
	}
	d = rules.Derive(day, tod("09:10:00"), tod("17:40:00"), previous, nil, nil)
	assert.Equal(t, "FN: Present [LA: Deducted(CL)] & AN: Present", d.Status.String())
	assert.Equal(t, &denied, d.LAApproval)
}

func TestRules_Derive_LeaveOverlay(t *testing.T) {
	rules := DefaultRules()
	forenoon := leave.SessionForenoon

	fullLeave := leave.Leave{
		FullDay: leave.FullDay{From: day, To: day.AddDate(0, 0, 1), FromDuration: leave.DurationFull, ToDuration: leave.DurationFull},
		Status:  approval.Values{approval.Approved, approval.Approved, approval.Pending},
	}
	halfLeave := leave.Leave{
		FullDay: leave.FullDay{From: day, To: day, FromDuration: leave.DurationHalf, FromSession: &forenoon, ToDuration: leave.DurationHalf, ToSession: &forenoon},
		Status:  approval.Values{approval.Pending, approval.NotApplicable, approval.NotApplicable},
	}
	rejected := fullLeave
	rejected.Status = approval.Values{approval.Rejected, approval.NotApplicable, approval.NotApplicable}
	partial := fullLeave
	partial.RejectedDates = []time.Time{day}

	t.Run("approved full day", func(t *testing.T) {
		d := rules.Derive(day, nil, nil, nil, []leave.Leave{fullLeave}, nil)
		assert.Equal(t, "Leave (Approved)", d.Status.String())
		assert.Nil(t, d.HalfDay)
	})

	t.Run("pending half day over a late arrival", func(t *testing.T) {
		d := rules.Derive(day, tod("09:05:00"), tod("17:30:00"), nil, []leave.Leave{halfLeave}, nil)
		require.NoError(t, d.Status.Validate())
		assert.Equal(t, "FN: Leave (Approval Pending) & AN: Present", d.Status.String())
		require.NotNil(t, d.HalfDay)
		assert.Equal(t, status.HalfDayFirstHalf, *d.HalfDay)
		assert.Nil(t, d.LAApproval)
	})

	t.Run("rejected leave is ignored", func(t *testing.T) {
		d := rules.Derive(day, nil, nil, nil, []leave.Leave{rejected}, nil)
		assert.Equal(t, "AWI", d.Status.String())
	})

	t.Run("rejected date is ignored", func(t *testing.T) {
		d := rules.Derive(day, nil, nil, nil, []leave.Leave{partial}, nil)
		assert.Equal(t, "AWI", d.Status.String())
	})
}

func TestRules_Derive_ODOverlay(t *testing.T) {
	rules := DefaultRules()
	pending := approval.Values{approval.Pending, approval.NotApplicable, approval.NotApplicable, approval.NotApplicable, approval.NotApplicable}

	tests := []struct {
		name string
		od   od.OD
		in   *clock.TimeOfDay
		out  *clock.TimeOfDay
		want string
	}{
		{
			name: "whole day window",
			od:   od.OD{DateOut: day, TimeOut: clock.At(10, 0, 0), DateIn: day, TimeIn: clock.At(16, 0, 0), Status: pending},
			want: "OD: 10:00 to 16:00",
		},
		{
			name: "forenoon window",
			od:   od.OD{DateOut: day, TimeOut: clock.At(9, 30, 0), DateIn: day, TimeIn: clock.At(12, 0, 0), Status: pending},
			in:   tod("12:30:00"),
			out:  tod("17:30:00"),
			want: "FN: OD: 09:30 to 12:00 & AN: Present",
		},
		{
			name: "afternoon window",
			od:   od.OD{DateOut: day, TimeOut: clock.At(14, 0, 0), DateIn: day, TimeIn: clock.At(17, 0, 0), Status: pending},
			in:   tod("08:55:00"),
			out:  tod("13:50:00"),
			want: "FN: Present(-) & AN: OD: 14:00 to 17:00",
		},
		{
			name: "middle of multi-day",
			od:   od.OD{DateOut: day.AddDate(0, 0, -1), TimeOut: clock.At(15, 0, 0), DateIn: day.AddDate(0, 0, 1), TimeIn: clock.At(11, 0, 0), Status: pending},
			want: "Present (OD: 9:00 to 5:30)",
		},
		{
			name: "denied OD",
			od: od.OD{DateOut: day, TimeOut: clock.At(10, 0, 0), DateIn: day, TimeIn: clock.At(16, 0, 0),
				Status: approval.Values{approval.Denied, approval.NotApplicable, approval.NotApplicable, approval.NotApplicable, approval.NotApplicable}},
			want: "AWI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rules.Derive(day, tt.in, tt.out, nil, nil, []od.OD{tt.od})
			require.NoError(t, d.Status.Validate())
			assert.Equal(t, tt.want, d.Status.String())
		})
	}
}

func TestRules_Derive_Idempotent(t *testing.T) {
	rules := DefaultRules()
	afternoon := leave.SessionAfternoon
	leaves := []leave.Leave{{
		FullDay: leave.FullDay{From: day, To: day, FromDuration: leave.DurationHalf, FromSession: &afternoon, ToDuration: leave.DurationHalf, ToSession: &afternoon},
		Status:  approval.Values{approval.Approved, approval.Pending, approval.NotApplicable},
	}}
	ods := []od.OD{{
		DateOut: day, TimeOut: clock.At(9, 30, 0), DateIn: day, TimeIn: clock.At(12, 0, 0),
		Status: approval.Values{approval.Allowed, approval.Pending, approval.NotApplicable, approval.NotApplicable, approval.NotApplicable},
	}}

	first := rules.Derive(day, tod("09:05:00"), nil, nil, leaves, ods)
	previous := &attendance.Attendance{Status: first.Status, HalfDay: first.HalfDay, LAApproval: first.LAApproval, Version: 1}
	second := rules.Derive(day, tod("09:05:00"), nil, previous, leaves, ods)

	assert.Equal(t, "FN: OD: 09:30 to 12:00 & AN: Leave (Approval Pending)", first.Status.String())
	assert.Equal(t, first.Status.String(), second.Status.String())
	assert.Equal(t, first.HalfDay, second.HalfDay)
}

func ptr[T any](v T) *T {
	return &v
}
