package attendance

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

// Rules are the office-hour thresholds used to derive a day's status.
type Rules struct {
	OfficeStart clock.TimeOfDay // on time up to and including this
	LAGrace     clock.TimeOfDay // late arrivals up to this may be excused
	FullDayOut  clock.TimeOfDay // leaving at or after this is a full day
	FNCutoff    clock.TimeOfDay // an OD starting before this takes the forenoon
	ANCutoff    clock.TimeOfDay // an OD ending after this takes the afternoon
}

func DefaultRules() Rules {
	return Rules{
		OfficeStart: clock.At(9, 0, 0),
		LAGrace:     clock.At(9, 15, 0),
		FullDayOut:  clock.At(17, 30, 0),
		FNCutoff:    clock.At(13, 0, 0),
		ANCutoff:    clock.At(13, 30, 0),
	}
}

// Derived is the computed part of an attendance record.
type Derived struct {
	Status          status.Status
	HalfDay         *status.HalfDayMarker
	OvertimeMinutes int
	LAApproval      *attendance.LAApproval
}

// Derive computes the status of one day from the merged punch times, the
// previous record and the leave and OD requests covering the day. It is a
// pure function of its inputs, so running it again over the same record
// gives the same result.
func (r Rules) Derive(date time.Time, in, out *clock.TimeOfDay, previous *attendance.Attendance, leaves []leave.Leave, ods []od.OD) Derived {
	d := r.base(in, out, previous)
	r.overlayLeaves(&d, date, leaves)
	r.overlayODs(&d, date, ods)

	// a late arrival hidden by leave or OD is no longer waiting for anyone
	if d.LAApproval != nil && *d.LAApproval == attendance.LAPending && !d.Status.HalfHas(status.FN, status.KindLateArrival) {
		d.LAApproval = nil
	}
	return d
}

func (r Rules) base(in, out *clock.TimeOfDay, previous *attendance.Attendance) Derived {
	var d Derived

	if out != nil && *out > r.FullDayOut {
		d.OvertimeMinutes = int(*out-r.FullDayOut) / 60
	}

	switch {
	case in == nil && out == nil:
		d.Status = status.Whole(status.AWI())
		return d
	case in == nil:
		// an OUT without an IN is treated as an open day until corrected
		d.Status = status.Whole(status.PresentOpen())
		return d
	}

	afternoon := status.PresentOpen()
	if out != nil && *out >= r.FullDayOut {
		afternoon = status.Present()
	}

	if *in <= r.OfficeStart {
		d.Status = status.Whole(afternoon)
		return d
	}

	la, approval := r.lateArrival(*in, previous)
	d.Status = status.Halves(la, afternoon)
	d.LAApproval = approval
	return d
}

// lateArrival keeps a decision already taken on the previous record.
func (r Rules) lateArrival(in clock.TimeOfDay, previous *attendance.Attendance) (status.Atom, *attendance.LAApproval) {
	if in > r.LAGrace {
		return status.LateArrival(status.LANotRequired), nil
	}

	if previous != nil && previous.LAApproval != nil && *previous.LAApproval != attendance.LAPending {
		decided := *previous.LAApproval
		prev := previous.Status.Get(status.FN)
		if prev.Kind == status.KindLateArrival && prev.LA != status.LANotRequired && prev.LA != status.LAApprovalPending {
			return prev, &decided
		}
		if decided == attendance.LAAllowed {
			return status.LateArrival(status.LAAllowed), &decided
		}
		return status.LateArrival(status.LADenied), &decided
	}

	pending := attendance.LAPending
	return status.LateArrival(status.LAApprovalPending), &pending
}

func (r Rules) overlayLeaves(d *Derived, date time.Time, leaves []leave.Leave) {
	for _, l := range leaves {
		if l.IsRejected() || !l.FullDay.Covers(date) || l.IsDateRejected(date) {
			continue
		}
		atom := status.Leave(l.AttendanceState())
		if half, ok := l.FullDay.HalfOn(date); ok {
			d.Status = d.Status.With(half, atom)
			marker := status.HalfDayFirstHalf
			if half == status.AN {
				marker = status.HalfDayAfternoon
			}
			d.HalfDay = &marker
			continue
		}
		d.Status = status.Whole(atom)
		d.HalfDay = nil
	}
}

func (r Rules) overlayODs(d *Derived, date time.Time, ods []od.OD) {
	for _, o := range ods {
		if o.IsRejected() || !o.Covers(date) {
			continue
		}
		from, to, full := o.WindowOn(date)

		if full {
			if !d.Status.Has(status.KindLeave) && !d.Status.Has(status.KindODFullDay) {
				d.Status = status.Whole(status.ODFullDay())
			}
			continue
		}

		atom := status.OD(from, to)
		fn, an := from < r.FNCutoff, to > r.ANCutoff
		if !fn && !an {
			// a short OD inside the lunch break goes to the forenoon
			fn = true
		}
		if fn && an && !d.Status.IsSplit() && !d.Status.Has(status.KindLeave) && !d.Status.Has(status.KindOD) {
			d.Status = status.Whole(atom)
			continue
		}
		if fn && r.halfFree(d.Status, status.FN) {
			d.Status = d.Status.With(status.FN, atom)
		}
		if an && r.halfFree(d.Status, status.AN) {
			d.Status = d.Status.With(status.AN, atom)
		}
	}
}

// halfFree reports whether an OD may be written to half h: leave and an
// earlier OD are never overwritten.
func (r Rules) halfFree(s status.Status, h status.Half) bool {
	k := s.Get(h).Kind
	return k != status.KindLeave && k != status.KindOD && k != status.KindODFullDay
}
