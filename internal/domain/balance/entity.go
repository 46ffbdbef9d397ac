// Package balance is the leave ledger: the only writer of employee balance
// counters. Every deduction is recorded under an idempotency key so a
// retried acknowledgement or late-arrival denial is charged once.
package balance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/shopspring/decimal"
)

// Counter names a balance field.
type Counter string

const (
	CounterPaidLeaves         Counter = "paid_leaves"
	CounterMedicalLeaves      Counter = "medical_leaves"
	CounterRestrictedHolidays Counter = "restricted_holidays"
	CounterMaternityClaims    Counter = "maternity_claims"
	CounterPaternityClaims    Counter = "paternity_claims"
	CounterCompensatory       Counter = "compensatory"
	CounterUnpaid             Counter = "unpaid_leaves_taken"
)

// Deduction is one applied ledger entry.
type Deduction struct {
	Key                 string
	EmployeeID          string
	LeaveType           *leave.LeaveType
	Days                decimal.Decimal
	Paid                decimal.Decimal // taken from paidLeaves
	Medical             decimal.Decimal
	Restricted          decimal.Decimal
	Unpaid              decimal.Decimal
	Claims              int
	CompensatoryEntryID *string
	Source              *status.DeductionSource // late-arrival deductions only
	CreatedAt           time.Time
}

// LeaveKey is the idempotency key of a leave deduction.
func LeaveKey(leaveID string) string {
	return "leave:" + leaveID
}

// LateArrivalKey is the idempotency key of a late-arrival deduction.
func LateArrivalKey(attendanceID string) string {
	return "la:" + attendanceID
}

// LateArrivalDays is what a denied late arrival costs.
var LateArrivalDays = decimal.NewFromFloat(0.5)

// InsufficientBalanceError names the counter that would go negative.
type InsufficientBalanceError struct {
	EmployeeID string
	Counter    Counter
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: available %s, requested %s",
		e.Counter, e.Available.String(), e.Requested.String())
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
