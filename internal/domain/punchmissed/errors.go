package punchmissed

import "errors"

var (
	ErrPunchMissedNotFound   = errors.New("punch missed request not found")
	ErrMonthlyLimitReached   = errors.New("only one punch missed request can be submitted per calendar month")
	ErrFutureDate            = errors.New("punch missed date cannot be in the future")
	ErrAdminInputStage       = errors.New("admin input can only be given at the admin stage")
	ErrUnauthorized          = errors.New("unauthorized to access this punch missed request")
	ErrNotDepartmentApprover = errors.New("only the HOD of the employee's department may decide this stage")
)
