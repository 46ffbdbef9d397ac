package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrVersionConflict    = errors.New("attendance record was modified concurrently")
	ErrTransientIO        = errors.New("attendance storage temporarily unavailable")

	// Late-arrival errors
	ErrNotLateArrival       = errors.New("attendance is not a late arrival")
	ErrLateArrivalNotOpen   = errors.New("late arrival is not awaiting approval")
	ErrLateArrivalSelf      = errors.New("cannot decide on your own late arrival")
	ErrLateArrivalForbidden = errors.New("only the department HOD, or the CEO for an HOD, may decide this late arrival")
	ErrLateArrivalReason    = errors.New("a reason is required to deny a late arrival")
	ErrUnauthorized         = errors.New("unauthorized to access this attendance record")
)
