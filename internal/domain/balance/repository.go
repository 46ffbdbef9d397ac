package balance

import "context"

type DeductionRepository interface {
	// GetByKey returns nil when no deduction exists for key.
	GetByKey(ctx context.Context, key string) (*Deduction, error)
	// Create fails with ErrDuplicateDeduction when key is taken.
	Create(ctx context.Context, d Deduction) (Deduction, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Deduction, error)
}
