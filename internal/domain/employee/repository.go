package employee

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDForUpdate locks the row for the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]Employee, error)
	ListByRole(ctx context.Context, role user.Role) ([]Employee, error)

	UpdateBalances(ctx context.Context, id string, balances Balances) error
	SetLastPunchMissedSubmission(ctx context.Context, id string, at time.Time) error
}

type CompensatoryRepository interface {
	GetByID(ctx context.Context, id string) (CompensatoryEntry, error)
	ListAvailable(ctx context.Context, employeeID string) ([]CompensatoryEntry, error)
	MarkUsed(ctx context.Context, id string, usedFor string) error
}
