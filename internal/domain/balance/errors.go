package balance

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrDuplicateDeduction  = errors.New("deduction already recorded")
	ErrNothingToDeduct     = errors.New("leave has no approved days to deduct")
)
