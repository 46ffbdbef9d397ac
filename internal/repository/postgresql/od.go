package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type odRepositoryImpl struct {
	db *database.DB
}

func NewODRepository(db *database.DB) od.ODRepository {
	return &odRepositoryImpl{db: db}
}

const odColumns = `
	o.id, o.employee_id, o.department_id,
	o.date_out, to_char(o.time_out, 'HH24:MI:SS'), o.date_in, to_char(o.time_in, 'HH24:MI:SS'),
	o.purpose, o.place_unit_visit,
	o.status, o.submitter_role, o.history, o.actual_punch_times,
	o.version, o.created_at, o.updated_at,
	e.full_name
`

func scanOD(row pgx.Row) (od.OD, error) {
	var (
		o               od.OD
		timeOut, timeIn string
		status          []byte
		employeeName    string
	)
	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.DepartmentID,
		&o.DateOut, &timeOut, &o.DateIn, &timeIn,
		&o.Purpose, &o.PlaceUnitVisit,
		&status, &o.SubmitterRole, &o.History, &o.ActualPunchTimes,
		&o.Version, &o.CreatedAt, &o.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		return od.OD{}, err
	}
	out, err := scanTimeOfDay(&timeOut)
	if err != nil {
		return od.OD{}, err
	}
	in, err := scanTimeOfDay(&timeIn)
	if err != nil {
		return od.OD{}, err
	}
	o.TimeOut, o.TimeIn = *out, *in
	if o.Status, err = scanStages(approval.ODChain, status); err != nil {
		return od.OD{}, err
	}
	o.EmployeeName = &employeeName
	return o, nil
}

func (r *odRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]od.OD, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ods []od.OD
	for rows.Next() {
		o, err := scanOD(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan od: %w", err)
		}
		ods = append(ods, o)
	}
	return ods, rows.Err()
}

// Create implements od.ODRepository.
func (r *odRepositoryImpl) Create(ctx context.Context, o od.OD) (od.OD, error) {
	q := GetQuerier(ctx, r.db)

	cols, err := stageParams(approval.ODChain, o.Status)
	if err != nil {
		return od.OD{}, err
	}

	query := `
		INSERT INTO ods (
			id, employee_id, department_id,
			date_out, time_out, date_in, time_in,
			purpose, place_unit_visit,
			status, pending_stage, rejected, submitter_role, history, actual_punch_times,
			version, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2,
			$3, $4::time, $5, $6::time,
			$7, $8,
			$9, $10, $11, $12, $13, $14,
			1, NOW(), NOW()
		) RETURNING id, version, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		o.EmployeeID, o.DepartmentID,
		o.DateOut, o.TimeOut.String(), o.DateIn, o.TimeIn.String(),
		o.Purpose, o.PlaceUnitVisit,
		cols.status, cols.pendingStage, cols.rejected, o.SubmitterRole, o.History, o.ActualPunchTimes,
	).Scan(&o.ID, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return od.OD{}, fmt.Errorf("failed to create od: %w", err)
	}
	return o, nil
}

// GetByID implements od.ODRepository.
func (r *odRepositoryImpl) GetByID(ctx context.Context, id string) (od.OD, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + odColumns + `
		FROM ods o
		JOIN employees e ON e.id = o.employee_id
		WHERE o.id = $1
	`

	o, err := scanOD(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return od.OD{}, od.ErrODNotFound
		}
		return od.OD{}, fmt.Errorf("failed to get od: %w", err)
	}
	return o, nil
}

// Update implements od.ODRepository.
func (r *odRepositoryImpl) Update(ctx context.Context, o od.OD) (od.OD, error) {
	q := GetQuerier(ctx, r.db)

	cols, err := stageParams(approval.ODChain, o.Status)
	if err != nil {
		return od.OD{}, err
	}

	query := `
		UPDATE ods
		SET status = $1, pending_stage = $2, rejected = $3, history = $4,
			version = version + 1, updated_at = NOW()
		WHERE id = $5 AND version = $6
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		cols.status, cols.pendingStage, cols.rejected, o.History,
		o.ID, o.Version,
	).Scan(&o.Version, &o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, o.ID); getErr != nil {
				return od.OD{}, getErr
			}
			return od.OD{}, approval.ErrConflict
		}
		return od.OD{}, fmt.Errorf("failed to update od: %w", err)
	}
	return o, nil
}

// ListActiveCovering implements od.ODRepository.
func (r *odRepositoryImpl) ListActiveCovering(ctx context.Context, employeeID string, from, to time.Time) ([]od.OD, error) {
	ods, err := r.query(ctx, `
		SELECT `+odColumns+`
		FROM ods o
		JOIN employees e ON e.id = o.employee_id
		WHERE o.employee_id = $1 AND NOT o.rejected
		  AND o.date_out <= $3 AND o.date_in >= $2
		ORDER BY o.date_out ASC
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list active ods: %w", err)
	}
	return ods, nil
}

// RecordActualPunch implements od.ODRepository. The replace runs in SQL so
// concurrent reconciles of different days do not overwrite each other.
func (r *odRepositoryImpl) RecordActualPunch(ctx context.Context, id string, pair od.PunchPair) error {
	q := GetQuerier(ctx, r.db)

	entry, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to marshal punch pair: %w", err)
	}

	query := `
		UPDATE ods
		SET actual_punch_times = COALESCE((
				SELECT jsonb_agg(p)
				FROM jsonb_array_elements(actual_punch_times) p
				WHERE p->>'date' <> $2
			), '[]'::jsonb) || jsonb_build_array($3::jsonb),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, pair.Date, entry)
	if err != nil {
		return fmt.Errorf("failed to record actual punch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return od.ErrODNotFound
	}
	return nil
}

// List implements od.ODRepository.
func (r *odRepositoryImpl) List(ctx context.Context, filter od.ODFilter) ([]od.OD, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("o.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.DepartmentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("o.department_id = $%d", argIdx))
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.PendingStage != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("o.pending_stage = $%d", argIdx))
		args = append(args, *filter.PendingStage)
		argIdx++
	}

	baseQuery := `
		FROM ods o
		JOIN employees e ON e.id = o.employee_id
		WHERE ` + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ods: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d
	`, odColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))

	ods, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ods: %w", err)
	}
	return ods, total, nil
}
