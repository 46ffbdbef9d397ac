package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, email, department_id, role, employment_status,
	paid_leaves, medical_leaves, restricted_holidays, maternity_claims, paternity_claims,
	unpaid_leaves_taken, medical_last_used_year, last_punch_missed_submission,
	created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.Email, &emp.DepartmentID, &emp.Role, &emp.EmploymentStatus,
		&emp.Balances.PaidLeaves, &emp.Balances.MedicalLeaves, &emp.Balances.RestrictedHolidays,
		&emp.Balances.MaternityClaims, &emp.Balances.PaternityClaims,
		&emp.Balances.UnpaidLeavesTaken, &emp.Balances.MedicalLastUsedYear, &emp.LastPunchMissedSubmission,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) get(ctx context.Context, query string, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.get(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

// GetByIDForUpdate implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return e.get(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 FOR UPDATE`, id)
}

func (e *employeeRepositoryImpl) list(ctx context.Context, where string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ` + where + ` ORDER BY id`
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return e.list(ctx, "employment_status = $1", employee.EmploymentStatusActive)
}

// ListByDepartment implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListByDepartment(ctx context.Context, departmentID string) ([]employee.Employee, error) {
	return e.list(ctx, "department_id = $1 AND employment_status = $2", departmentID, employee.EmploymentStatusActive)
}

// ListByRole implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListByRole(ctx context.Context, role user.Role) ([]employee.Employee, error) {
	return e.list(ctx, "role = $1 AND employment_status = $2", role, employee.EmploymentStatusActive)
}

// UpdateBalances implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateBalances(ctx context.Context, id string, b employee.Balances) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET paid_leaves = $1, medical_leaves = $2, restricted_holidays = $3,
			maternity_claims = $4, paternity_claims = $5, unpaid_leaves_taken = $6,
			medical_last_used_year = $7, updated_at = NOW()
		WHERE id = $8
	`

	tag, err := q.Exec(ctx, query,
		b.PaidLeaves, b.MedicalLeaves, b.RestrictedHolidays,
		b.MaternityClaims, b.PaternityClaims, b.UnpaidLeavesTaken,
		b.MedicalLastUsedYear, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update balances for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// SetLastPunchMissedSubmission implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) SetLastPunchMissedSubmission(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees SET last_punch_missed_submission = $1, updated_at = NOW() WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to record punch missed submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

type compensatoryRepositoryImpl struct {
	db *database.DB
}

func NewCompensatoryRepository(db *database.DB) employee.CompensatoryRepository {
	return &compensatoryRepositoryImpl{db: db}
}

// GetByID implements employee.CompensatoryRepository.
func (r *compensatoryRepositoryImpl) GetByID(ctx context.Context, id string) (employee.CompensatoryEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, earned_on, hours, status, used_for, created_at, updated_at
		FROM compensatory_entries
		WHERE id = $1
	`

	var c employee.CompensatoryEntry
	err := q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.EmployeeID, &c.EarnedOn, &c.Hours, &c.Status, &c.UsedFor, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.CompensatoryEntry{}, employee.ErrCompensatoryNotFound
		}
		return employee.CompensatoryEntry{}, fmt.Errorf("failed to get compensatory entry: %w", err)
	}
	return c, nil
}

// ListAvailable implements employee.CompensatoryRepository. Oldest first.
func (r *compensatoryRepositoryImpl) ListAvailable(ctx context.Context, employeeID string) ([]employee.CompensatoryEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, earned_on, hours, status, used_for, created_at, updated_at
		FROM compensatory_entries
		WHERE employee_id = $1 AND status = $2
		ORDER BY earned_on ASC
	`

	rows, err := q.Query(ctx, query, employeeID, employee.CompensatoryAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensatory entries: %w", err)
	}
	defer rows.Close()

	var entries []employee.CompensatoryEntry
	for rows.Next() {
		var c employee.CompensatoryEntry
		if err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.EarnedOn, &c.Hours, &c.Status, &c.UsedFor, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}

// MarkUsed implements employee.CompensatoryRepository.
func (r *compensatoryRepositoryImpl) MarkUsed(ctx context.Context, id string, usedFor string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compensatory_entries
		SET status = $1, used_for = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	tag, err := q.Exec(ctx, query, employee.CompensatoryUsed, usedFor, id, employee.CompensatoryAvailable)
	if err != nil {
		return fmt.Errorf("failed to mark compensatory entry used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrCompensatoryNotAvailable
	}
	return nil
}
