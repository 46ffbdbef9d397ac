package leave

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type LeaveType string

const (
	TypeCasual             LeaveType = "Casual"
	TypeMedical            LeaveType = "Medical"
	TypeMaternity          LeaveType = "Maternity"
	TypePaternity          LeaveType = "Paternity"
	TypeCompensatory       LeaveType = "Compensatory"
	TypeRestrictedHolidays LeaveType = "RestrictedHolidays"
	TypeLWP                LeaveType = "LWP"
	TypeEmergency          LeaveType = "Emergency"
)

func AllLeaveTypes() []LeaveType {
	return []LeaveType{
		TypeCasual, TypeMedical, TypeMaternity, TypePaternity,
		TypeCompensatory, TypeRestrictedHolidays, TypeLWP, TypeEmergency,
	}
}

func (t LeaveType) IsValid() bool {
	for _, v := range AllLeaveTypes() {
		if v == t {
			return true
		}
	}
	return false
}

type Duration string

const (
	DurationFull Duration = "full"
	DurationHalf Duration = "half"
)

type Session string

const (
	SessionForenoon  Session = "forenoon"
	SessionAfternoon Session = "afternoon"
)

// Half maps a session onto the status half it occupies.
func (s Session) Half() status.Half {
	if s == SessionAfternoon {
		return status.AN
	}
	return status.FN
}

// FullDay is the date range of one leave segment. The first and last day
// may each be a half day in a given session.
type FullDay struct {
	From         time.Time
	To           time.Time
	FromDuration Duration
	FromSession  *Session
	ToDuration   Duration
	ToSession    *Session
}

// Covers reports whether date is inside the range.
func (f FullDay) Covers(date time.Time) bool {
	d := clock.Date(date)
	return !d.Before(clock.Date(f.From)) && !d.After(clock.Date(f.To))
}

// Overlaps reports whether two ranges share a date.
func (f FullDay) Overlaps(o FullDay) bool {
	return !clock.Date(f.From).After(clock.Date(o.To)) && !clock.Date(o.From).After(clock.Date(f.To))
}

// HalfOn returns the half occupied on date when the leave covers only half
// of that day.
func (f FullDay) HalfOn(date time.Time) (status.Half, bool) {
	if !f.Covers(date) {
		return 0, false
	}
	if clock.SameDay(date, f.From) && f.FromDuration == DurationHalf && f.FromSession != nil {
		return f.FromSession.Half(), true
	}
	if clock.SameDay(date, f.To) && f.ToDuration == DurationHalf && f.ToSession != nil {
		return f.ToSession.Half(), true
	}
	return 0, false
}

// WeightOn is the number of leave days charged for date: 1, or 0.5 on a half
// day, before holidays are taken into account.
func (f FullDay) WeightOn(date time.Time) decimal.Decimal {
	if !f.Covers(date) {
		return decimal.Zero
	}
	if _, half := f.HalfOn(date); half {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromInt(1)
}

// Dates lists every calendar date of the range.
func (f FullDay) Dates() []time.Time {
	return clock.DaysBetween(f.From, f.To)
}

// Leave is one leave segment. A composite request is several segments
// sharing CompositeLeaveID.
type Leave struct {
	ID                   string
	CompositeLeaveID     string
	EmployeeID           string
	DepartmentID         string
	LeaveType            LeaveType
	FullDay              FullDay
	Reason               string
	ChargeGivenTo        *string
	MedicalCertificateID *string
	CompensatoryEntryID  *string
	Days                 decimal.Decimal
	Status               approval.Values
	SubmitterRole        user.Role
	ApprovedDates        []time.Time
	RejectedDates        []time.Time
	History              approval.History
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// DTO
	EmployeeName *string
}

// Submitter returns the actor who filed the leave.
func (l Leave) Submitter() user.Actor {
	return user.Actor{EmployeeID: l.EmployeeID, Role: l.SubmitterRole}
}

func (l Leave) IsRejected() bool {
	return approval.LeaveChain.IsRejected(l.Status)
}

func (l Leave) IsAcknowledged() bool {
	return approval.LeaveChain.IsCompleted(l.Status)
}

// IsDateRejected reports whether date was excluded by partial approval.
func (l Leave) IsDateRejected(date time.Time) bool {
	for _, d := range l.RejectedDates {
		if clock.SameDay(d, date) {
			return true
		}
	}
	return false
}

// IsFullyApproved reports whether the CEO stage has approved the leave.
// The admin acknowledgement does not change the attendance outcome.
func (l Leave) IsFullyApproved() bool {
	v := approval.LeaveChain.Get(l.Status, "ceo")
	return v == approval.Approved || v == approval.Submitted
}

// AttendanceState is the leave modifier shown on attendance for the leave.
func (l Leave) AttendanceState() status.LeaveState {
	if l.IsFullyApproved() {
		return status.LeaveApproved
	}
	return status.LeaveApprovalPending
}
