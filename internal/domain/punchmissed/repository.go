package punchmissed

import "context"

type PunchMissedRepository interface {
	Create(ctx context.Context, p PunchMissed) (PunchMissed, error)
	GetByID(ctx context.Context, id string) (PunchMissed, error)
	// Update uses the same version check as leave.LeaveRepository.Update.
	Update(ctx context.Context, p PunchMissed) (PunchMissed, error)
	List(ctx context.Context, filter PunchMissedFilter) ([]PunchMissed, int64, error)
}
