package attendance

import (
	"context"
)

// AttendanceService is the attendance mutation surface: reconciliation and
// late-arrival resolution.
type AttendanceService interface {
	// Reconcile derives the attendance of one day for the given employees
	// (every active employee when none are given).
	Reconcile(ctx context.Context, req ReconcileRequest) (Report, error)

	// IngestPunches stores raw punches received from the biometric bridge.
	IngestPunches(ctx context.Context, req IngestPunchesRequest) (int, error)

	// SubmitLateArrivalReason attaches the employee's explanation to their
	// own pending late arrival.
	SubmitLateArrivalReason(ctx context.Context, req LateArrivalReasonRequest) (AttendanceResponse, error)

	// DecideLateArrival allows or denies a pending late arrival. A denial is
	// charged to CL, compensatory or salary through the leave ledger.
	DecideLateArrival(ctx context.Context, req LateArrivalDecisionRequest) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetMyAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
