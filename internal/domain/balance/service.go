package balance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// LeaveCharge describes what a leave would take from the balances.
type LeaveCharge struct {
	EmployeeID          string
	LeaveType           leave.LeaveType
	Days                decimal.Decimal
	Year                int
	CompensatoryEntryID *string
}

// Ledger is the mutation surface for leave balances.
type Ledger interface {
	// CanCharge validates a charge at submission time without writing.
	CanCharge(ctx context.Context, charges []LeaveCharge) error

	// Deduct applies the charge of an acknowledged leave once per key.
	// A second call with the same key returns the first deduction.
	Deduct(ctx context.Context, key string, charge LeaveCharge) (Deduction, error)

	// DeductLateArrival charges half a day for a denied late arrival, from
	// CL, then a compensatory entry, then salary.
	DeductLateArrival(ctx context.Context, employeeID, attendanceID string, on time.Time) (Deduction, error)

	GetBalance(ctx context.Context, employeeID string) (employee.BalanceResponse, error)
}
