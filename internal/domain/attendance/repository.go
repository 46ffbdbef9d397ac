package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records.
type AttendanceRepository interface {
	// GetByID returns ErrAttendanceNotFound when absent.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns nil when no record exists for the day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Upsert atomically creates or updates the record keyed by
	// (EmployeeID, LogDate). Version holds the version the caller read (0 for
	// a new record); a mismatch fails with ErrVersionConflict.
	Upsert(ctx context.Context, a Attendance) (Attendance, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}

// RawPunchLogRepository reads and consumes biometric punches.
type RawPunchLogRepository interface {
	Create(ctx context.Context, logs []RawPunchLog) error

	// ListUnprocessed returns the unprocessed punches of one day, oldest first.
	ListUnprocessed(ctx context.Context, employeeID string, date time.Time) ([]RawPunchLog, error)

	MarkProcessed(ctx context.Context, ids []string) error
}
