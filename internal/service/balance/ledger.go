package balance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type LedgerImpl struct {
	tx           database.Transactor
	employees    employee.EmployeeRepository
	compensatory employee.CompensatoryRepository
	deductions   balance.DeductionRepository
	now          func() time.Time
}

func NewLedger(
	tx database.Transactor,
	employees employee.EmployeeRepository,
	compensatory employee.CompensatoryRepository,
	deductions balance.DeductionRepository,
) *LedgerImpl {
	return &LedgerImpl{
		tx:           tx,
		employees:    employees,
		compensatory: compensatory,
		deductions:   deductions,
		now:          time.Now,
	}
}

// CanCharge implements balance.Ledger.
func (l *LedgerImpl) CanCharge(ctx context.Context, charges []balance.LeaveCharge) error {
	if len(charges) == 0 {
		return nil
	}
	emp, err := l.employees.GetByID(ctx, charges[0].EmployeeID)
	if err != nil {
		return err
	}

	// Charges of one submission draw from the same counters, so check the
	// running totals rather than each charge alone.
	b := emp.Balances
	usedEntries := make(map[string]bool)
	for _, c := range charges {
		if c.EmployeeID != emp.ID {
			return fmt.Errorf("charges for more than one employee in a single check")
		}
		next, err := l.apply(ctx, emp.ID, b, c, usedEntries)
		if err != nil {
			return err
		}
		b = next.balances
	}
	return nil
}

// Deduct implements balance.Ledger.
func (l *LedgerImpl) Deduct(ctx context.Context, key string, charge balance.LeaveCharge) (balance.Deduction, error) {
	var result balance.Deduction
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := l.deductions.GetByKey(txCtx, key)
		if err != nil {
			return fmt.Errorf("failed to look up deduction: %w", err)
		}
		if existing != nil {
			slog.Info("Ledger: deduction already applied", "key", key, "employee_id", existing.EmployeeID)
			result = *existing
			return nil
		}

		emp, err := l.employees.GetByIDForUpdate(txCtx, charge.EmployeeID)
		if err != nil {
			return err
		}

		applied, err := l.apply(txCtx, emp.ID, emp.Balances, charge, map[string]bool{})
		if err != nil {
			return err
		}

		if applied.compensatoryEntryID != nil {
			if err := l.compensatory.MarkUsed(txCtx, *applied.compensatoryEntryID, key); err != nil {
				return fmt.Errorf("failed to mark compensatory entry used: %w", err)
			}
		}
		if err := l.employees.UpdateBalances(txCtx, emp.ID, applied.balances); err != nil {
			return fmt.Errorf("failed to update balances: %w", err)
		}

		lt := charge.LeaveType
		applied.deduction.Key = key
		applied.deduction.EmployeeID = emp.ID
		applied.deduction.LeaveType = &lt
		applied.deduction.Days = charge.Days
		applied.deduction.CompensatoryEntryID = applied.compensatoryEntryID
		applied.deduction.CreatedAt = l.now()

		result, err = l.deductions.Create(txCtx, applied.deduction)
		if errors.Is(err, balance.ErrDuplicateDeduction) {
			existing, getErr := l.deductions.GetByKey(txCtx, key)
			if getErr == nil && existing != nil {
				result = *existing
				return nil
			}
		}
		return err
	})
	if err != nil {
		return balance.Deduction{}, err
	}

	slog.Info("Ledger: leave deducted",
		"key", key,
		"employee_id", result.EmployeeID,
		"days", result.Days.String(),
		"paid", result.Paid.String(),
		"unpaid", result.Unpaid.String(),
	)
	return result, nil
}

type applied struct {
	balances            employee.Balances
	deduction           balance.Deduction
	compensatoryEntryID *string
}

// apply computes the balances after charge, failing when a counter would
// go negative.
func (l *LedgerImpl) apply(ctx context.Context, employeeID string, b employee.Balances, c balance.LeaveCharge, usedEntries map[string]bool) (applied, error) {
	out := applied{balances: b}
	days := c.Days

	short := func(counter balance.Counter, available, requested decimal.Decimal) error {
		return &balance.InsufficientBalanceError{
			EmployeeID: employeeID,
			Counter:    counter,
			Available:  available,
			Requested:  requested,
		}
	}

	switch c.LeaveType {
	case leave.TypeCasual:
		if b.PaidLeaves.LessThan(days) {
			return out, short(balance.CounterPaidLeaves, b.PaidLeaves, days)
		}
		out.balances.PaidLeaves = b.PaidLeaves.Sub(days)
		out.deduction.Paid = days

	case leave.TypeRestrictedHolidays:
		if b.RestrictedHolidays.LessThan(days) {
			return out, short(balance.CounterRestrictedHolidays, b.RestrictedHolidays, days)
		}
		if b.PaidLeaves.LessThan(days) {
			return out, short(balance.CounterPaidLeaves, b.PaidLeaves, days)
		}
		out.balances.RestrictedHolidays = b.RestrictedHolidays.Sub(days)
		out.balances.PaidLeaves = b.PaidLeaves.Sub(days)
		out.deduction.Paid = days
		out.deduction.Restricted = days

	case leave.TypeEmergency:
		covered := decimal.Min(decimal.Max(b.PaidLeaves, decimal.Zero), days)
		out.balances.PaidLeaves = b.PaidLeaves.Sub(covered)
		out.balances.UnpaidLeavesTaken = b.UnpaidLeavesTaken.Add(days.Sub(covered))
		out.deduction.Paid = covered
		out.deduction.Unpaid = days.Sub(covered)

	case leave.TypeMedical:
		if b.MedicalLeaves.LessThan(days) {
			return out, short(balance.CounterMedicalLeaves, b.MedicalLeaves, days)
		}
		out.balances.MedicalLeaves = b.MedicalLeaves.Sub(days)
		year := c.Year
		out.balances.MedicalLastUsedYear = &year
		out.deduction.Medical = days

	case leave.TypeMaternity:
		if b.MaternityClaims >= employee.MaxParentalClaims {
			return out, short(balance.CounterMaternityClaims,
				decimal.NewFromInt(int64(employee.MaxParentalClaims-b.MaternityClaims)), decimal.NewFromInt(1))
		}
		out.balances.MaternityClaims = b.MaternityClaims + 1
		out.deduction.Claims = 1

	case leave.TypePaternity:
		if b.PaternityClaims >= employee.MaxParentalClaims {
			return out, short(balance.CounterPaternityClaims,
				decimal.NewFromInt(int64(employee.MaxParentalClaims-b.PaternityClaims)), decimal.NewFromInt(1))
		}
		out.balances.PaternityClaims = b.PaternityClaims + 1
		out.deduction.Claims = 1

	case leave.TypeCompensatory:
		if c.CompensatoryEntryID == nil {
			return out, leave.ErrCompensatoryRequired
		}
		entry, err := l.compensatory.GetByID(ctx, *c.CompensatoryEntryID)
		if err != nil {
			return out, err
		}
		if entry.EmployeeID != employeeID {
			return out, employee.ErrCompensatoryOwnerMismatch
		}
		if usedEntries[entry.ID] || !entry.Covers(days) {
			return out, short(balance.CounterCompensatory, entry.Hours, employee.CompensatoryFullDayHours.Mul(days))
		}
		usedEntries[entry.ID] = true
		id := entry.ID
		out.compensatoryEntryID = &id

	case leave.TypeLWP:
		out.balances.UnpaidLeavesTaken = b.UnpaidLeavesTaken.Add(days)
		out.deduction.Unpaid = days

	default:
		return out, fmt.Errorf("unknown leave type %q", c.LeaveType)
	}

	return out, nil
}

// DeductLateArrival implements balance.Ledger.
func (l *LedgerImpl) DeductLateArrival(ctx context.Context, employeeID, attendanceID string, on time.Time) (balance.Deduction, error) {
	key := balance.LateArrivalKey(attendanceID)
	var result balance.Deduction

	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := l.deductions.GetByKey(txCtx, key)
		if err != nil {
			return fmt.Errorf("failed to look up deduction: %w", err)
		}
		if existing != nil {
			result = *existing
			return nil
		}

		emp, err := l.employees.GetByIDForUpdate(txCtx, employeeID)
		if err != nil {
			return err
		}

		days := balance.LateArrivalDays
		b := emp.Balances
		d := balance.Deduction{
			Key:        key,
			EmployeeID: employeeID,
			Days:       days,
			CreatedAt:  l.now(),
		}

		var source status.DeductionSource
		switch {
		case b.PaidLeaves.GreaterThanOrEqual(days):
			source = status.DeductCL
			b.PaidLeaves = b.PaidLeaves.Sub(days)
			d.Paid = days
		default:
			entries, err := l.compensatory.ListAvailable(txCtx, employeeID)
			if err != nil {
				return fmt.Errorf("failed to list compensatory entries: %w", err)
			}
			for _, e := range entries {
				if e.Covers(days) {
					if err := l.compensatory.MarkUsed(txCtx, e.ID, key); err != nil {
						return fmt.Errorf("failed to mark compensatory entry used: %w", err)
					}
					id := e.ID
					d.CompensatoryEntryID = &id
					source = status.DeductCompensatory
					break
				}
			}
			if source == "" {
				source = status.DeductSalary
				b.UnpaidLeavesTaken = b.UnpaidLeavesTaken.Add(days)
				d.Unpaid = days
			}
		}
		d.Source = &source

		if err := l.employees.UpdateBalances(txCtx, employeeID, b); err != nil {
			return fmt.Errorf("failed to update balances: %w", err)
		}
		result, err = l.deductions.Create(txCtx, d)
		return err
	})
	if err != nil {
		return balance.Deduction{}, err
	}

	slog.Info("Ledger: late arrival deducted",
		"employee_id", employeeID,
		"attendance_id", attendanceID,
		"date", on.Format("2006-01-02"),
		"source", *result.Source,
	)
	return result, nil
}

// GetBalance implements balance.Ledger.
func (l *LedgerImpl) GetBalance(ctx context.Context, employeeID string) (employee.BalanceResponse, error) {
	emp, err := l.employees.GetByID(ctx, employeeID)
	if err != nil {
		return employee.BalanceResponse{}, err
	}
	entries, err := l.compensatory.ListAvailable(ctx, employeeID)
	if err != nil {
		return employee.BalanceResponse{}, fmt.Errorf("failed to list compensatory entries: %w", err)
	}
	return emp.ToBalanceResponse(entries), nil
}

var _ balance.Ledger = (*LedgerImpl)(nil)
