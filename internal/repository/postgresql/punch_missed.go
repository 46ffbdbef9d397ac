package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type punchMissedRepositoryImpl struct {
	db *database.DB
}

func NewPunchMissedRepository(db *database.DB) punchmissed.PunchMissedRepository {
	return &punchMissedRepositoryImpl{db: db}
}

const punchMissedColumns = `
	p.id, p.employee_id, p.department_id, p.punch_missed_date, p.punch_when,
	to_char(p.your_input, 'HH24:MI:SS'), to_char(p.admin_input, 'HH24:MI:SS'), p.reason,
	p.status, p.submitter_role, p.history,
	p.version, p.created_at, p.updated_at,
	e.full_name
`

func scanPunchMissed(row pgx.Row) (punchmissed.PunchMissed, error) {
	var (
		p            punchmissed.PunchMissed
		yourInput    string
		adminInput   *string
		status       []byte
		employeeName string
	)
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.DepartmentID, &p.PunchMissedDate, &p.When,
		&yourInput, &adminInput, &p.Reason,
		&status, &p.SubmitterRole, &p.History,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		return punchmissed.PunchMissed{}, err
	}
	input, err := scanTimeOfDay(&yourInput)
	if err != nil {
		return punchmissed.PunchMissed{}, err
	}
	p.YourInput = *input
	if p.AdminInput, err = scanTimeOfDay(adminInput); err != nil {
		return punchmissed.PunchMissed{}, err
	}
	if p.Status, err = scanStages(approval.PunchMissedChain, status); err != nil {
		return punchmissed.PunchMissed{}, err
	}
	p.EmployeeName = &employeeName
	return p, nil
}

// Create implements punchmissed.PunchMissedRepository.
func (r *punchMissedRepositoryImpl) Create(ctx context.Context, p punchmissed.PunchMissed) (punchmissed.PunchMissed, error) {
	q := GetQuerier(ctx, r.db)

	cols, err := stageParams(approval.PunchMissedChain, p.Status)
	if err != nil {
		return punchmissed.PunchMissed{}, err
	}

	query := `
		INSERT INTO punch_missed (
			id, employee_id, department_id, punch_missed_date, punch_when,
			your_input, admin_input, reason,
			status, pending_stage, rejected, submitter_role, history,
			version, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5::time, $6::time, $7,
			$8, $9, $10, $11, $12,
			1, NOW(), NOW()
		) RETURNING id, version, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		p.EmployeeID, p.DepartmentID, p.PunchMissedDate, p.When,
		p.YourInput.String(), timeOfDayParam(p.AdminInput), p.Reason,
		cols.status, cols.pendingStage, cols.rejected, p.SubmitterRole, p.History,
	).Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return punchmissed.PunchMissed{}, fmt.Errorf("failed to create punch missed request: %w", err)
	}
	return p, nil
}

// GetByID implements punchmissed.PunchMissedRepository.
func (r *punchMissedRepositoryImpl) GetByID(ctx context.Context, id string) (punchmissed.PunchMissed, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchMissedColumns + `
		FROM punch_missed p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`

	p, err := scanPunchMissed(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return punchmissed.PunchMissed{}, punchmissed.ErrPunchMissedNotFound
		}
		return punchmissed.PunchMissed{}, fmt.Errorf("failed to get punch missed request: %w", err)
	}
	return p, nil
}

// Update implements punchmissed.PunchMissedRepository.
func (r *punchMissedRepositoryImpl) Update(ctx context.Context, p punchmissed.PunchMissed) (punchmissed.PunchMissed, error) {
	q := GetQuerier(ctx, r.db)

	cols, err := stageParams(approval.PunchMissedChain, p.Status)
	if err != nil {
		return punchmissed.PunchMissed{}, err
	}

	query := `
		UPDATE punch_missed
		SET status = $1, pending_stage = $2, rejected = $3, history = $4, admin_input = $5::time,
			version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		cols.status, cols.pendingStage, cols.rejected, p.History, timeOfDayParam(p.AdminInput),
		p.ID, p.Version,
	).Scan(&p.Version, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
				return punchmissed.PunchMissed{}, getErr
			}
			return punchmissed.PunchMissed{}, approval.ErrConflict
		}
		return punchmissed.PunchMissed{}, fmt.Errorf("failed to update punch missed request: %w", err)
	}
	return p, nil
}

// List implements punchmissed.PunchMissedRepository.
func (r *punchMissedRepositoryImpl) List(ctx context.Context, filter punchmissed.PunchMissedFilter) ([]punchmissed.PunchMissed, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.DepartmentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.department_id = $%d", argIdx))
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.PendingStage != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.pending_stage = $%d", argIdx))
		args = append(args, *filter.PendingStage)
		argIdx++
	}

	baseQuery := `
		FROM punch_missed p
		JOIN employees e ON e.id = p.employee_id
		WHERE ` + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count punch missed requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d
	`, punchMissedColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list punch missed requests: %w", err)
	}
	defer rows.Close()

	var requests []punchmissed.PunchMissed
	for rows.Next() {
		p, err := scanPunchMissed(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan punch missed request: %w", err)
		}
		requests = append(requests, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
