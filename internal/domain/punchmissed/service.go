package punchmissed

import "context"

type PunchMissedService interface {
	// Submit files a correction; one per employee per calendar month.
	Submit(ctx context.Context, req SubmitPunchMissedRequest) (PunchMissedResponse, error)

	// Decide moves one stage. The CEO approval writes the corrected time
	// into the attendance record of that day.
	Decide(ctx context.Context, req DecidePunchMissedRequest) (PunchMissedResponse, error)

	Unlock(ctx context.Context, req UnlockPunchMissedRequest) (PunchMissedResponse, error)
	GetPunchMissed(ctx context.Context, id string) (PunchMissedResponse, error)
	ListPunchMissed(ctx context.Context, filter PunchMissedFilter) (ListPunchMissedResponse, error)
}
