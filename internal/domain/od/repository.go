package od

import (
	"context"
	"time"
)

type ODRepository interface {
	Create(ctx context.Context, o OD) (OD, error)
	GetByID(ctx context.Context, id string) (OD, error)

	// Update writes status and history with the same version check as
	// leave.LeaveRepository.Update.
	Update(ctx context.Context, o OD) (OD, error)

	// ListActiveCovering returns the employee's non-rejected ODs whose
	// window overlaps from..to.
	ListActiveCovering(ctx context.Context, employeeID string, from, to time.Time) ([]OD, error)

	// RecordActualPunch replaces the punch pair stored for pair.Date.
	RecordActualPunch(ctx context.Context, id string, pair PunchPair) error

	List(ctx context.Context, filter ODFilter) ([]OD, int64, error)
}
