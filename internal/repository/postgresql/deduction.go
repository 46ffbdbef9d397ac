package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type deductionRepositoryImpl struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) balance.DeductionRepository {
	return &deductionRepositoryImpl{db: db}
}

const deductionColumns = `
	key, employee_id, leave_type, days, paid, medical, restricted, unpaid, claims,
	compensatory_entry_id, source, created_at
`

func scanDeduction(row pgx.Row) (balance.Deduction, error) {
	var d balance.Deduction
	err := row.Scan(
		&d.Key, &d.EmployeeID, &d.LeaveType, &d.Days, &d.Paid, &d.Medical, &d.Restricted, &d.Unpaid, &d.Claims,
		&d.CompensatoryEntryID, &d.Source, &d.CreatedAt,
	)
	return d, err
}

// GetByKey implements balance.DeductionRepository.
func (r *deductionRepositoryImpl) GetByKey(ctx context.Context, key string) (*balance.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDeduction(q.QueryRow(ctx, `SELECT `+deductionColumns+` FROM leave_deductions WHERE key = $1`, key))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deduction: %w", err)
	}
	return &d, nil
}

// Create implements balance.DeductionRepository.
func (r *deductionRepositoryImpl) Create(ctx context.Context, d balance.Deduction) (balance.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_deductions (` + deductionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := q.Exec(ctx, query,
		d.Key, d.EmployeeID, d.LeaveType, d.Days, d.Paid, d.Medical, d.Restricted, d.Unpaid, d.Claims,
		d.CompensatoryEntryID, d.Source, d.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return balance.Deduction{}, balance.ErrDuplicateDeduction
		}
		return balance.Deduction{}, fmt.Errorf("failed to create deduction: %w", err)
	}
	return d, nil
}

// ListByEmployee implements balance.DeductionRepository.
func (r *deductionRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]balance.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+deductionColumns+`
		FROM leave_deductions
		WHERE employee_id = $1
		ORDER BY created_at ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deductions: %w", err)
	}
	defer rows.Close()

	var deductions []balance.Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, err
		}
		deductions = append(deductions, d)
	}
	return deductions, rows.Err()
}
