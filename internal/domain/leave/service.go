package leave

import (
	"context"
)

type LeaveService interface {
	// Submit files one or more segments as a single composite request.
	Submit(ctx context.Context, req SubmitLeaveRequest) ([]LeaveResponse, error)

	// Decide moves one stage of the chain. Acknowledgement deducts the
	// approved days from the employee's balances exactly once.
	Decide(ctx context.Context, req DecideLeaveRequest) (LeaveResponse, error)

	// Unlock re-opens one stage of a decided leave.
	Unlock(ctx context.Context, req UnlockLeaveRequest) (LeaveResponse, error)

	GetLeave(ctx context.Context, id string) (LeaveResponse, error)
	ListLeaves(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	GetMyLeaves(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
}
