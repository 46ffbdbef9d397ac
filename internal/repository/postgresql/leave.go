package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

const leaveColumns = `
	l.id, l.composite_leave_id, l.employee_id, l.department_id, l.leave_type,
	l.from_date, l.to_date, l.from_duration, l.from_session, l.to_duration, l.to_session,
	l.reason, l.charge_given_to, l.medical_certificate_id, l.compensatory_entry_id, l.days,
	l.status, l.submitter_role, l.approved_dates, l.rejected_dates, l.history,
	l.version, l.created_at, l.updated_at,
	e.full_name
`

func scanLeave(row pgx.Row) (leave.Leave, error) {
	var (
		l            leave.Leave
		status       []byte
		employeeName string
	)
	err := row.Scan(
		&l.ID, &l.CompositeLeaveID, &l.EmployeeID, &l.DepartmentID, &l.LeaveType,
		&l.FullDay.From, &l.FullDay.To, &l.FullDay.FromDuration, &l.FullDay.FromSession, &l.FullDay.ToDuration, &l.FullDay.ToSession,
		&l.Reason, &l.ChargeGivenTo, &l.MedicalCertificateID, &l.CompensatoryEntryID, &l.Days,
		&status, &l.SubmitterRole, &l.ApprovedDates, &l.RejectedDates, &l.History,
		&l.Version, &l.CreatedAt, &l.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		return leave.Leave{}, err
	}
	if l.Status, err = scanStages(approval.LeaveChain, status); err != nil {
		return leave.Leave{}, err
	}
	l.EmployeeName = &employeeName
	return l, nil
}

func (r *leaveRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []leave.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

// CreateBatch implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) CreateBatch(ctx context.Context, leaves []leave.Leave) ([]leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leaves (
			id, composite_leave_id, employee_id, department_id, leave_type,
			from_date, to_date, from_duration, from_session, to_duration, to_session,
			reason, charge_given_to, medical_certificate_id, compensatory_entry_id, days,
			status, pending_stage, rejected, submitter_role, approved_dates, rejected_dates, history,
			version, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22,
			1, NOW(), NOW()
		) RETURNING id, version, created_at, updated_at
	`

	created := make([]leave.Leave, 0, len(leaves))
	for _, l := range leaves {
		cols, err := stageParams(approval.LeaveChain, l.Status)
		if err != nil {
			return nil, err
		}
		err = q.QueryRow(ctx, query,
			l.CompositeLeaveID, l.EmployeeID, l.DepartmentID, l.LeaveType,
			l.FullDay.From, l.FullDay.To, l.FullDay.FromDuration, l.FullDay.FromSession, l.FullDay.ToDuration, l.FullDay.ToSession,
			l.Reason, l.ChargeGivenTo, l.MedicalCertificateID, l.CompensatoryEntryID, l.Days,
			cols.status, cols.pendingStage, cols.rejected, l.SubmitterRole, l.ApprovedDates, l.RejectedDates, l.History,
		).Scan(&l.ID, &l.Version, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create leave: %w", err)
		}
		created = append(created, l)
	}
	return created, nil
}

// GetByID implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `
		FROM leaves l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.id = $1
	`

	l, err := scanLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Leave{}, leave.ErrLeaveNotFound
		}
		return leave.Leave{}, fmt.Errorf("failed to get leave: %w", err)
	}
	return l, nil
}

// Update implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Update(ctx context.Context, l leave.Leave) (leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	cols, err := stageParams(approval.LeaveChain, l.Status)
	if err != nil {
		return leave.Leave{}, err
	}

	query := `
		UPDATE leaves
		SET status = $1, pending_stage = $2, rejected = $3,
			approved_dates = $4, rejected_dates = $5, history = $6,
			version = version + 1, updated_at = NOW()
		WHERE id = $7 AND version = $8
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		cols.status, cols.pendingStage, cols.rejected,
		l.ApprovedDates, l.RejectedDates, l.History,
		l.ID, l.Version,
	).Scan(&l.Version, &l.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, l.ID); getErr != nil {
				return leave.Leave{}, getErr
			}
			return leave.Leave{}, approval.ErrConflict
		}
		return leave.Leave{}, fmt.Errorf("failed to update leave: %w", err)
	}
	return l, nil
}

// ListActiveBetween implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) ListActiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Leave, error) {
	leaves, err := r.query(ctx, `
		SELECT `+leaveColumns+`
		FROM leaves l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.employee_id = $1 AND NOT l.rejected
		  AND l.from_date <= $3 AND l.to_date >= $2
		ORDER BY l.from_date ASC
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list active leaves: %w", err)
	}
	return leaves, nil
}

// CountActiveOfTypeInYear implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) CountActiveOfTypeInYear(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM leaves
		WHERE employee_id = $1 AND leave_type = $2 AND NOT rejected
		  AND EXTRACT(YEAR FROM from_date) = $3
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, leaveType, year).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leaves: %w", err)
	}
	return count, nil
}

// List implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.Leave, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.DepartmentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.department_id = $%d", argIdx))
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.LeaveType != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.leave_type = $%d", argIdx))
		args = append(args, *filter.LeaveType)
		argIdx++
	}
	if filter.PendingStage != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.pending_stage = $%d", argIdx))
		args = append(args, *filter.PendingStage)
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.to_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.from_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	baseQuery := `
		FROM leaves l
		JOIN employees e ON e.id = l.employee_id
		WHERE ` + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leaves: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))

	leaves, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leaves: %w", err)
	}
	return leaves, total, nil
}
