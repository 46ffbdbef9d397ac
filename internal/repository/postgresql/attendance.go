package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.log_date,
	to_char(a.time_in, 'HH24:MI:SS'), to_char(a.time_out, 'HH24:MI:SS'),
	a.status, a.half_day, a.overtime_minutes,
	a.la_approval, a.la_reason, a.la_remarks, a.la_decided_by, a.remarks,
	a.version, a.created_at, a.updated_at,
	e.full_name
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att             attendance.Attendance
		timeIn, timeOut *string
		employeeName    string
	)
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.LogDate,
		&timeIn, &timeOut,
		&att.Status, &att.HalfDay, &att.OvertimeMinutes,
		&att.LAApproval, &att.LAReason, &att.LARemarks, &att.LADecidedBy, &att.Remarks,
		&att.Version, &att.CreatedAt, &att.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if att.TimeIn, err = scanTimeOfDay(timeIn); err != nil {
		return attendance.Attendance{}, err
	}
	if att.TimeOut, err = scanTimeOfDay(timeOut); err != nil {
		return attendance.Attendance{}, err
	}
	att.EmployeeName = &employeeName
	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.log_date = $2
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &att, nil
}

// Upsert implements attendance.AttendanceRepository. A new record loses to a
// concurrent insert of the same day; an update only applies to the version
// the caller read.
func (a *attendanceRepository) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	args := []interface{}{
		att.EmployeeID, att.LogDate,
		timeOfDayParam(att.TimeIn), timeOfDayParam(att.TimeOut),
		att.Status, att.HalfDay, att.OvertimeMinutes,
		att.LAApproval, att.LAReason, att.LARemarks, att.LADecidedBy, att.Remarks,
	}

	var query string
	if att.IsNew() {
		query = `
			INSERT INTO attendances (
				id, employee_id, log_date, time_in, time_out,
				status, half_day, overtime_minutes,
				la_approval, la_reason, la_remarks, la_decided_by, remarks,
				version, created_at, updated_at
			) VALUES (
				uuidv7(), $1, $2, $3::time, $4::time,
				$5, $6, $7,
				$8, $9, $10, $11, $12,
				1, NOW(), NOW()
			)
			ON CONFLICT (employee_id, log_date) DO NOTHING
			RETURNING id, version, created_at, updated_at
		`
	} else {
		query = `
			UPDATE attendances
			SET time_in = $3::time, time_out = $4::time,
				status = $5, half_day = $6, overtime_minutes = $7,
				la_approval = $8, la_reason = $9, la_remarks = $10, la_decided_by = $11, remarks = $12,
				version = version + 1, updated_at = NOW()
			WHERE employee_id = $1 AND log_date = $2 AND version = $13
			RETURNING id, version, created_at, updated_at
		`
		args = append(args, att.Version)
	}

	err := q.QueryRow(ctx, query, args...).Scan(&att.ID, &att.Version, &att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrVersionConflict
		}
		if database.IsTransient(err) {
			return attendance.Attendance{}, fmt.Errorf("%w: %v", attendance.ErrTransientIO, err)
		}
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	att.EmployeeName = nil
	return att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.DepartmentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("e.department_id = $%d", argIdx))
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.log_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.log_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.LAPending {
		whereClauses = append(whereClauses, fmt.Sprintf("a.la_approval = $%d", argIdx))
		args = append(args, attendance.LAPending)
		argIdx++
	}

	baseQuery := `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE ` + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		ORDER BY a.log_date DESC, a.employee_id ASC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}

type rawPunchLogRepository struct {
	db *database.DB
}

func NewRawPunchLogRepository(db *database.DB) attendance.RawPunchLogRepository {
	return &rawPunchLogRepository{db: db}
}

// Create implements attendance.RawPunchLogRepository.
func (r *rawPunchLogRepository) Create(ctx context.Context, logs []attendance.RawPunchLog) error {
	if len(logs) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(logs))
	valueArgs := make([]interface{}, 0, len(logs)*4)
	for i, l := range logs {
		base := i * 4
		valueStrings = append(valueStrings, fmt.Sprintf(
			"(uuidv7(), $%d, $%d, $%d, $%d, false, NOW())",
			base+1, base+2, base+3, base+4,
		))
		valueArgs = append(valueArgs, l.EmployeeID, l.LogDate, l.LogTime, l.Direction)
	}

	query := fmt.Sprintf(`
		INSERT INTO raw_punch_logs (id, employee_id, log_date, log_time, direction, processed, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert punch logs: %w", err)
	}
	return nil
}

// ListUnprocessed implements attendance.RawPunchLogRepository. log_time is
// kept as the device wrote it, so malformed values reach the reconciler.
func (r *rawPunchLogRepository) ListUnprocessed(ctx context.Context, employeeID string, date time.Time) ([]attendance.RawPunchLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, log_date, log_time, direction, processed, created_at
		FROM raw_punch_logs
		WHERE employee_id = $1 AND log_date = $2 AND processed = false
		ORDER BY log_time ASC, id ASC
		FOR UPDATE SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		if database.IsTransient(err) {
			return nil, fmt.Errorf("%w: %v", attendance.ErrTransientIO, err)
		}
		return nil, fmt.Errorf("failed to list punch logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.RawPunchLog
	for rows.Next() {
		var l attendance.RawPunchLog
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.LogDate, &l.LogTime, &l.Direction, &l.Processed, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// MarkProcessed implements attendance.RawPunchLogRepository.
func (r *rawPunchLogRepository) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE raw_punch_logs SET processed = true WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to mark punch logs processed: %w", err)
	}
	return nil
}
