// Package status models the closed attendance status vocabulary.
//
// A day's status is either one atom covering the whole day ("Present",
// "AWI", "Leave (Approved)") or a forenoon/afternoon pair rendered as
// "FN: <atom> & AN: <atom>". Values are kept structured inside the
// application and only turned into display strings at the storage and API
// boundary, so every persisted string is produced by String and accepted by
// Parse.
package status

import (
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type Kind string

const (
	KindPresent     Kind = "present"
	KindPresentOpen Kind = "present_open" // clocked in, not out
	KindAbsent      Kind = "absent"
	KindAWI         Kind = "awi"
	KindLateArrival Kind = "late_arrival"
	KindLeave       Kind = "leave"
	KindOD          Kind = "od"
	KindODFullDay   Kind = "od_full_day"
	KindHalfDay     Kind = "half_day"
)

// LAState is the late-arrival modifier.
type LAState string

const (
	LANotRequired     LAState = ""
	LAApprovalPending LAState = "Approval Pending"
	LAAllowed         LAState = "Allowed"
	LADenied          LAState = "Denied"
	LADeducted        LAState = "Deducted"
)

// DeductionSource names what a denied late arrival was charged to.
type DeductionSource string

const (
	DeductCL           DeductionSource = "CL"
	DeductCompensatory DeductionSource = "Compensatory"
	DeductSalary       DeductionSource = "Salary"
)

type LeaveState string

const (
	LeaveApproved        LeaveState = "Approved"
	LeaveApprovalPending LeaveState = "Approval Pending"
)

type HalfDayMarker string

const (
	HalfDayUnspecified HalfDayMarker = ""
	HalfDayFirstHalf   HalfDayMarker = "First Half"
	HalfDayAfternoon   HalfDayMarker = "Afternoon"
)

// Full-day OD window shown for days strictly inside a multi-day OD.
var (
	FullDayODStart = clock.At(9, 0, 0)
	FullDayODEnd   = clock.At(17, 30, 0)
)

// Atom is one half-day (or whole-day) status value.
type Atom struct {
	Kind      Kind
	LA        LAState
	Deduction DeductionSource
	Leave     LeaveState
	ODFrom    clock.TimeOfDay
	ODTo      clock.TimeOfDay
	HalfDay   HalfDayMarker
}

func Present() Atom     { return Atom{Kind: KindPresent} }
func PresentOpen() Atom { return Atom{Kind: KindPresentOpen} }
func Absent() Atom      { return Atom{Kind: KindAbsent} }
func AWI() Atom         { return Atom{Kind: KindAWI} }
func ODFullDay() Atom   { return Atom{Kind: KindODFullDay} }

func LateArrival(state LAState) Atom {
	return Atom{Kind: KindLateArrival, LA: state}
}

func LateArrivalDeducted(source DeductionSource) Atom {
	return Atom{Kind: KindLateArrival, LA: LADeducted, Deduction: source}
}

func Leave(state LeaveState) Atom {
	return Atom{Kind: KindLeave, Leave: state}
}

func OD(from, to clock.TimeOfDay) Atom {
	return Atom{Kind: KindOD, ODFrom: from, ODTo: to}
}

func HalfDay(marker HalfDayMarker) Atom {
	return Atom{Kind: KindHalfDay, HalfDay: marker}
}

// String renders the display form of the atom.
func (a Atom) String() string {
	switch a.Kind {
	case KindPresent:
		return "Present"
	case KindPresentOpen:
		return "Present(-)"
	case KindAbsent:
		return "Absent"
	case KindAWI:
		return "AWI"
	case KindLateArrival:
		switch a.LA {
		case LANotRequired:
			return "Present (LA)"
		case LADeducted:
			return fmt.Sprintf("Present [LA: Deducted(%s)]", a.Deduction)
		default:
			return fmt.Sprintf("Present [LA: %s]", a.LA)
		}
	case KindLeave:
		return fmt.Sprintf("Leave (%s)", a.Leave)
	case KindOD:
		return fmt.Sprintf("OD: %s to %s", a.ODFrom.HHMM(), a.ODTo.HHMM())
	case KindODFullDay:
		return "Present (OD: 9:00 to 5:30)"
	case KindHalfDay:
		if a.HalfDay == HalfDayUnspecified {
			return "Present (HD)"
		}
		return fmt.Sprintf("Present (HD: %s)", a.HalfDay)
	}
	return string(a.Kind)
}

// Validate checks that the modifiers fit the kind.
func (a Atom) Validate() error {
	switch a.Kind {
	case KindPresent, KindPresentOpen, KindAbsent, KindAWI, KindODFullDay:
		if a.LA != "" || a.Deduction != "" || a.Leave != "" || a.HalfDay != "" || a.ODFrom != 0 || a.ODTo != 0 {
			return fmt.Errorf("%w: %s carries no modifier", ErrInvalidStatus, a.Kind)
		}
	case KindLateArrival:
		switch a.LA {
		case LANotRequired, LAApprovalPending, LAAllowed, LADenied:
			if a.Deduction != "" {
				return fmt.Errorf("%w: deduction source only applies to deducted late arrival", ErrInvalidStatus)
			}
		case LADeducted:
			switch a.Deduction {
			case DeductCL, DeductCompensatory, DeductSalary:
			default:
				return fmt.Errorf("%w: unknown deduction source %q", ErrInvalidStatus, a.Deduction)
			}
		default:
			return fmt.Errorf("%w: unknown late arrival state %q", ErrInvalidStatus, a.LA)
		}
	case KindLeave:
		if a.Leave != LeaveApproved && a.Leave != LeaveApprovalPending {
			return fmt.Errorf("%w: unknown leave state %q", ErrInvalidStatus, a.Leave)
		}
	case KindOD:
		if a.ODFrom >= a.ODTo {
			return fmt.Errorf("%w: OD window %s to %s is empty", ErrInvalidStatus, a.ODFrom.HHMM(), a.ODTo.HHMM())
		}
	case KindHalfDay:
		switch a.HalfDay {
		case HalfDayUnspecified, HalfDayFirstHalf, HalfDayAfternoon:
		default:
			return fmt.Errorf("%w: unknown half day marker %q", ErrInvalidStatus, a.HalfDay)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidStatus, a.Kind)
	}
	return nil
}

// wholeDayOnly atoms describe the entire day and never appear in a split.
func (a Atom) wholeDayOnly() bool {
	return a.Kind == KindODFullDay || a.Kind == KindHalfDay
}
