package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	// CreateBatch stores the segments of one submission.
	CreateBatch(ctx context.Context, leaves []Leave) ([]Leave, error)

	GetByID(ctx context.Context, id string) (Leave, error)

	// Update writes status, dates and history when the stored version still
	// equals leave.Version, and bumps it. A mismatch fails with
	// approval.ErrConflict.
	Update(ctx context.Context, l Leave) (Leave, error)

	// ListActiveBetween returns the employee's non-rejected leaves whose
	// fullDay range overlaps from..to.
	ListActiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Leave, error)

	// CountActiveOfTypeInYear counts non-rejected leaves of a type starting in year.
	CountActiveOfTypeInYear(ctx context.Context, employeeID string, leaveType LeaveType, year int) (int, error)

	List(ctx context.Context, filter LeaveFilter) ([]Leave, int64, error)
}
