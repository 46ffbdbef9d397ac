package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/workflow"
	"golang.org/x/sync/errgroup"
)

// Config tunes the reconciler.
type Config struct {
	Rules        Rules
	Workers      int           // employees reconciled in parallel, default 4
	MaxAttempts  int           // per employee, default 3
	RetryBackoff time.Duration // multiplied by the attempt number, default 200ms
}

type AttendanceServiceImpl struct {
	tx          database.Transactor
	attendances attendance.AttendanceRepository
	punches     attendance.RawPunchLogRepository
	employees   employee.EmployeeRepository
	leaves      leave.LeaveRepository
	ods         od.ODRepository
	holidays    holiday.HolidayService
	ledger      balance.Ledger
	flow        *workflow.Helper
	cfg         Config
}

func NewAttendanceService(
	tx database.Transactor,
	attendances attendance.AttendanceRepository,
	punches attendance.RawPunchLogRepository,
	employees employee.EmployeeRepository,
	leaves leave.LeaveRepository,
	ods od.ODRepository,
	holidays holiday.HolidayService,
	ledger balance.Ledger,
	flow *workflow.Helper,
	cfg Config,
) *AttendanceServiceImpl {
	if cfg.Rules == (Rules{}) {
		cfg.Rules = DefaultRules()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	return &AttendanceServiceImpl{
		tx:          tx,
		attendances: attendances,
		punches:     punches,
		employees:   employees,
		leaves:      leaves,
		ods:         ods,
		holidays:    holidays,
		ledger:      ledger,
		flow:        flow,
		cfg:         cfg,
	}
}

type dayOutcome int

const (
	outcomeUnchanged dayOutcome = iota
	outcomeCreated
	outcomeUpdated
	outcomeSkipped
)

type employeeResult struct {
	outcome   dayOutcome
	punches   int
	malformed int
}

// Reconcile implements attendance.AttendanceService. One employee's failure
// is recorded in the report and never stops the others.
func (s *AttendanceServiceImpl) Reconcile(ctx context.Context, req attendance.ReconcileRequest) (attendance.Report, error) {
	if err := req.Validate(); err != nil {
		return attendance.Report{}, err
	}
	date, _ := clock.ParseDate(req.Date)
	logger := s.flow.Logger().With("date", req.Date)

	report := attendance.Report{
		Date:      req.Date,
		Failures:  []attendance.Failure{},
		StartedAt: s.flow.Now(),
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		emps, err := s.employees.ListActive(ctx)
		if err != nil {
			return attendance.Report{}, fmt.Errorf("failed to list employees: %w", err)
		}
		for _, e := range emps {
			employeeIDs = append(employeeIDs, e.ID)
		}
	}
	report.Employees = len(employeeIDs)

	cal, err := s.holidays.Calendar(ctx, date, date)
	if err != nil {
		return attendance.Report{}, fmt.Errorf("failed to load holidays: %w", err)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.Workers)

	for _, id := range employeeIDs {
		g.Go(func() error {
			res, attempts, err := s.reconcileWithRetry(ctx, logger, id, date, cal)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				logger.Error("failed to reconcile employee", "employee_id", id, "attempts", attempts, "error", err)
				report.Failures = append(report.Failures, attendance.Failure{
					EmployeeID: id,
					Attempts:   attempts,
					Error:      err.Error(),
				})
				return nil
			}

			report.PunchesProcessed += res.punches
			report.MalformedPunches += res.malformed
			switch res.outcome {
			case outcomeCreated:
				report.Created++
			case outcomeUpdated:
				report.Updated++
			case outcomeSkipped:
				report.Skipped++
			default:
				report.Unchanged++
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].EmployeeID < report.Failures[j].EmployeeID
	})
	report.FinishedAt = s.flow.Now()

	logger.Info("attendance reconciled",
		"employees", report.Employees,
		"created", report.Created,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"skipped", report.Skipped,
		"punches", report.PunchesProcessed,
		"malformed_punches", report.MalformedPunches,
		"failures", len(report.Failures),
	)
	return report, nil
}

func (s *AttendanceServiceImpl) reconcileWithRetry(ctx context.Context, logger *slog.Logger, employeeID string, date time.Time, cal holiday.Calendar) (employeeResult, int, error) {
	for attempt := 1; ; attempt++ {
		res, err := s.reconcileEmployee(ctx, logger, employeeID, date, cal)
		if err == nil {
			return res, attempt, nil
		}
		if !isRetryable(err) || attempt >= s.cfg.MaxAttempts {
			return res, attempt, err
		}

		logger.Warn("retrying employee reconciliation", "employee_id", employeeID, "attempt", attempt, "error", err)
		select {
		case <-time.After(s.cfg.RetryBackoff * time.Duration(attempt)):
		case <-ctx.Done():
			return res, attempt, ctx.Err()
		}
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, attendance.ErrTransientIO) ||
		errors.Is(err, attendance.ErrVersionConflict) ||
		database.IsTransient(err)
}

// reconcileEmployee runs the steps of one employee-day in one transaction:
// aggregate punches, derive the status, upsert the record, consume the
// punches and copy them onto covering ODs.
func (s *AttendanceServiceImpl) reconcileEmployee(ctx context.Context, logger *slog.Logger, employeeID string, date time.Time, cal holiday.Calendar) (employeeResult, error) {
	var res employeeResult

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		res = employeeResult{}

		emp, err := s.employees.GetByID(txCtx, employeeID)
		if err != nil {
			return err
		}
		if !emp.IsActive() {
			res.outcome = outcomeSkipped
			return nil
		}

		logs, err := s.punches.ListUnprocessed(txCtx, employeeID, date)
		if err != nil {
			return fmt.Errorf("failed to list punches: %w", err)
		}
		previous, err := s.attendances.GetByEmployeeAndDate(txCtx, employeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		if previous == nil && len(logs) == 0 && cal.IsNonWorking(date) {
			res.outcome = outcomeSkipped
			return nil
		}

		in, out, malformed := aggregate(logger, logs, previous)
		res.punches = len(logs)
		res.malformed = malformed

		leaves, err := s.leaves.ListActiveBetween(txCtx, employeeID, date, date)
		if err != nil {
			return fmt.Errorf("failed to list leaves: %w", err)
		}
		ods, err := s.ods.ListActiveCovering(txCtx, employeeID, date, date)
		if err != nil {
			return fmt.Errorf("failed to list ODs: %w", err)
		}

		derived := s.cfg.Rules.Derive(date, in, out, previous, leaves, ods)
		if err := derived.Status.Validate(); err != nil {
			return err
		}

		next := attendance.Attendance{EmployeeID: employeeID, LogDate: date}
		if previous != nil {
			next = *previous
		}
		next.TimeIn, next.TimeOut = in, out
		next.Status = derived.Status
		next.HalfDay = derived.HalfDay
		next.OvertimeMinutes = derived.OvertimeMinutes
		next.LAApproval = derived.LAApproval

		switch {
		case previous == nil:
			res.outcome = outcomeCreated
		case sameDay(*previous, next):
			res.outcome = outcomeUnchanged
		default:
			res.outcome = outcomeUpdated
		}
		if res.outcome != outcomeUnchanged {
			if _, err := s.attendances.Upsert(txCtx, next); err != nil {
				return fmt.Errorf("failed to upsert attendance: %w", err)
			}
		}

		if len(logs) == 0 {
			return nil
		}
		ids := make([]string, len(logs))
		for i, l := range logs {
			ids[i] = l.ID
		}
		if err := s.punches.MarkProcessed(txCtx, ids); err != nil {
			return fmt.Errorf("failed to mark punches processed: %w", err)
		}

		pair := od.PunchPair{Date: date.Format(clock.DateLayout), In: timeString(in), Out: timeString(out)}
		for _, o := range ods {
			if o.IsRejected() {
				continue
			}
			if err := s.ods.RecordActualPunch(txCtx, o.ID, pair); err != nil {
				return fmt.Errorf("failed to record OD punches: %w", err)
			}
		}
		return nil
	})
	return res, err
}

// aggregate merges new punches into the times already recorded: earliest IN
// and latest OUT win. A malformed IN counts as midnight, a malformed OUT is
// dropped.
func aggregate(logger *slog.Logger, logs []attendance.RawPunchLog, previous *attendance.Attendance) (in, out *clock.TimeOfDay, malformed int) {
	if previous != nil {
		in, out = previous.TimeIn, previous.TimeOut
	}

	for _, l := range logs {
		direction := attendance.Direction(strings.ToUpper(string(l.Direction)))
		t, err := clock.ParseTimeOfDay(l.LogTime)
		if err != nil || !validator.IsValidPunchTime(l.LogTime) {
			malformed++
			if direction == attendance.DirectionIn {
				logger.Warn("malformed punch time, defaulting to midnight",
					"employee_id", l.EmployeeID, "punch_id", l.ID, "log_time", l.LogTime)
				t = 0
			} else {
				logger.Warn("malformed punch time, dropping OUT punch",
					"employee_id", l.EmployeeID, "punch_id", l.ID, "log_time", l.LogTime)
				continue
			}
		}

		switch direction {
		case attendance.DirectionIn:
			if in == nil || t < *in {
				v := t
				in = &v
			}
		case attendance.DirectionOut:
			if out == nil || t > *out {
				v := t
				out = &v
			}
		}
	}
	return in, out, malformed
}

func sameDay(a, b attendance.Attendance) bool {
	return equalTime(a.TimeIn, b.TimeIn) &&
		equalTime(a.TimeOut, b.TimeOut) &&
		a.Status.String() == b.Status.String() &&
		equalPtr(a.HalfDay, b.HalfDay) &&
		a.OvertimeMinutes == b.OvertimeMinutes &&
		equalPtr(a.LAApproval, b.LAApproval)
}

func equalTime(a, b *clock.TimeOfDay) bool {
	return equalPtr(a, b)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timeString(t *clock.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

// IngestPunches implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) IngestPunches(ctx context.Context, req attendance.IngestPunchesRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	logs := make([]attendance.RawPunchLog, 0, len(req.Punches))
	for _, p := range req.Punches {
		date, _ := clock.ParseDate(p.LogDate)
		logs = append(logs, attendance.RawPunchLog{
			EmployeeID: p.EmployeeID,
			LogDate:    date,
			LogTime:    strings.TrimSpace(p.LogTime),
			Direction:  attendance.Direction(strings.ToUpper(p.Direction)),
		})
	}

	if err := s.punches.Create(ctx, logs); err != nil {
		return 0, fmt.Errorf("failed to store punches: %w", err)
	}
	return len(logs), nil
}

// SubmitLateArrivalReason implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SubmitLateArrivalReason(ctx context.Context, req attendance.LateArrivalReasonRequest) (attendance.AttendanceResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var updated attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		a, err := s.attendances.GetByID(txCtx, req.AttendanceID)
		if err != nil {
			return err
		}
		if a.EmployeeID != actor.EmployeeID {
			return attendance.ErrUnauthorized
		}
		if err := lateArrivalOpen(a); err != nil {
			return err
		}

		reason := strings.TrimSpace(req.Reason)
		a.LAReason = &reason
		updated, err = s.attendances.Upsert(txCtx, a)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	deciders, err := s.lateArrivalDeciders(ctx, updated.EmployeeID)
	if err != nil {
		s.flow.Logger().Warn("failed to resolve late arrival deciders", "attendance_id", updated.ID, "error", err)
	}
	for _, id := range deciders {
		s.flow.Tell(ctx, notification.CreateNotificationRequest{
			RecipientID: id,
			SenderID:    &actor.EmployeeID,
			Type:        notification.TypeLateArrival,
			Title:       fmt.Sprintf("Late arrival on %s awaits your decision", updated.LogDate.Format(clock.DateLayout)),
			Message:     *updated.LAReason,
			Data:        map[string]interface{}{"attendance_id": updated.ID},
		})
	}

	return updated.ToResponse(), nil
}

// DecideLateArrival implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DecideLateArrival(ctx context.Context, req attendance.LateArrivalDecisionRequest) (attendance.AttendanceResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	decision := attendance.LAApproval(req.Decision)
	remarks := strings.TrimSpace(req.Remarks)
	if decision == attendance.LADenied && remarks == "" {
		return attendance.AttendanceResponse{}, attendance.ErrLateArrivalReason
	}

	var updated attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		a, err := s.attendances.GetByID(txCtx, req.AttendanceID)
		if err != nil {
			return err
		}
		if err := lateArrivalOpen(a); err != nil {
			return err
		}
		if a.EmployeeID == actor.EmployeeID {
			return attendance.ErrLateArrivalSelf
		}
		if err := s.authorizeLateArrival(txCtx, actor, a.EmployeeID); err != nil {
			return err
		}

		atom := status.LateArrival(status.LAAllowed)
		if decision == attendance.LADenied {
			ded, err := s.ledger.DeductLateArrival(txCtx, a.EmployeeID, a.ID, a.LogDate)
			if err != nil {
				return err
			}
			source := status.DeductSalary
			if ded.Source != nil {
				source = *ded.Source
			}
			atom = status.LateArrivalDeducted(source)
		}

		a.Status = a.Status.With(status.FN, atom)
		a.LAApproval = &decision
		if remarks != "" {
			a.LARemarks = &remarks
		}
		a.LADecidedBy = &actor.EmployeeID

		updated, err = s.attendances.Upsert(txCtx, a)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.flow.Logger().Info("late arrival decided",
		"attendance_id", updated.ID, "employee_id", updated.EmployeeID, "decision", decision, "actor_id", actor.EmployeeID)

	s.flow.Tell(ctx, notification.CreateNotificationRequest{
		RecipientID: updated.EmployeeID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeLateArrival,
		Title:       fmt.Sprintf("Late arrival on %s %s", updated.LogDate.Format(clock.DateLayout), strings.ToLower(string(decision))),
		Message:     updated.Status.String(),
		Data:        map[string]interface{}{"attendance_id": updated.ID},
	})

	return updated.ToResponse(), nil
}

func lateArrivalOpen(a attendance.Attendance) error {
	if !a.Status.HalfHas(status.FN, status.KindLateArrival) {
		return attendance.ErrNotLateArrival
	}
	if a.LAApproval == nil || *a.LAApproval != attendance.LAPending {
		return attendance.ErrLateArrivalNotOpen
	}
	return nil
}

// authorizeLateArrival: the department HOD decides for employees, the CEO
// for HODs.
func (s *AttendanceServiceImpl) authorizeLateArrival(ctx context.Context, actor user.Actor, ownerID string) error {
	owner, err := s.employees.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	switch owner.Role {
	case user.RoleHOD:
		if actor.Role == user.RoleCEO {
			return nil
		}
	case user.RoleEmployee, user.RoleAdmin:
		if actor.Role == user.RoleCEO {
			return nil
		}
		if actor.Role == user.RoleHOD {
			ok, err := s.flow.CanDecideForDepartment(ctx, actor, owner.DepartmentID)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		}
	}
	return attendance.ErrLateArrivalForbidden
}

func (s *AttendanceServiceImpl) lateArrivalDeciders(ctx context.Context, ownerID string) ([]string, error) {
	owner, err := s.employees.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var emps []employee.Employee
	role := user.RoleHOD
	if owner.Role == user.RoleHOD {
		role = user.RoleCEO
		emps, err = s.employees.ListByRole(ctx, user.RoleCEO)
	} else {
		emps, err = s.employees.ListByDepartment(ctx, owner.DepartmentID)
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range emps {
		if e.Role == role && e.ID != ownerID {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

// CorrectPunch writes an approved punch-missed correction into the day's
// record and marks the day Present.
func (s *AttendanceServiceImpl) CorrectPunch(ctx context.Context, employeeID string, date time.Time, direction attendance.Direction, at clock.TimeOfDay) (attendance.Attendance, error) {
	date = clock.Date(date)

	var (
		result attendance.Attendance
		err    error
	)
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		result, err = s.correctOnce(ctx, employeeID, date, direction, at)
		if !errors.Is(err, attendance.ErrVersionConflict) {
			break
		}
	}
	if err != nil {
		return attendance.Attendance{}, err
	}

	s.flow.Logger().Info("attendance corrected",
		"employee_id", employeeID, "date", date.Format(clock.DateLayout), "direction", direction, "time", at.String())
	return result, nil
}

func (s *AttendanceServiceImpl) correctOnce(ctx context.Context, employeeID string, date time.Time, direction attendance.Direction, at clock.TimeOfDay) (attendance.Attendance, error) {
	previous, err := s.attendances.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.Attendance{}, err
	}

	a := attendance.Attendance{EmployeeID: employeeID, LogDate: date}
	if previous != nil {
		a = *previous
	}

	t := at
	if direction == attendance.DirectionIn {
		a.TimeIn = &t
	} else {
		a.TimeOut = &t
	}
	a.Status = status.Whole(status.Present())
	a.HalfDay = nil
	a.LAApproval = nil
	a.OvertimeMinutes = 0
	if a.TimeOut != nil && *a.TimeOut > s.cfg.Rules.FullDayOut {
		a.OvertimeMinutes = int(*a.TimeOut-s.cfg.Rules.FullDayOut) / 60
	}

	return s.attendances.Upsert(ctx, a)
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	dept, err := s.flow.DepartmentOf(ctx, a.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	ok, err := s.flow.CanView(ctx, actor, a.EmployeeID, dept)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !ok {
		return attendance.AttendanceResponse{}, attendance.ErrUnauthorized
	}
	return a.ToResponse(), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	switch actor.Role {
	case user.RoleAdmin, user.RoleCEO:
	case user.RoleHOD:
		dept, err := s.flow.DepartmentOf(ctx, actor.EmployeeID)
		if err != nil {
			return attendance.ListAttendanceResponse{}, err
		}
		filter.DepartmentID = &dept
	default:
		return attendance.ListAttendanceResponse{}, attendance.ErrUnauthorized
	}
	return s.list(ctx, filter)
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.EmployeeID = &actor.EmployeeID
	filter.DepartmentID = nil
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, totalCount, err := s.attendances.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, a := range records {
		responses = append(responses, a.ToResponse())
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  totalCount,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(totalCount) / float64(filter.Limit))),
		Attendances: responses,
	}, nil
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)
