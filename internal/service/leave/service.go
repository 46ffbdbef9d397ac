package leave

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaveServiceImpl struct {
	tx        database.Transactor
	leaves    leave.LeaveRepository
	employees employee.EmployeeRepository
	holidays  holiday.HolidayService
	ledger    balance.Ledger
	flow      *workflow.Helper
}

func NewLeaveService(
	tx database.Transactor,
	leaves leave.LeaveRepository,
	employees employee.EmployeeRepository,
	holidays holiday.HolidayService,
	ledger balance.Ledger,
	flow *workflow.Helper,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:        tx,
		leaves:    leaves,
		employees: employees,
		holidays:  holidays,
		ledger:    ledger,
		flow:      flow,
	}
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, req leave.SubmitLeaveRequest) ([]leave.LeaveResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return nil, err
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.flow.Submitter(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}

	segments := req.Segments
	for i := range segments {
		for j := i + 1; j < len(segments); j++ {
			if segments[i].FullDay.Overlaps(segments[j].FullDay) {
				return nil, leave.ErrSegmentsOverlap
			}
		}
	}

	from, to := segments[0].FullDay.From, segments[0].FullDay.To
	for _, seg := range segments[1:] {
		if seg.FullDay.From.Before(from) {
			from = seg.FullDay.From
		}
		if seg.FullDay.To.After(to) {
			to = seg.FullDay.To
		}
	}
	cal, err := s.holidays.Calendar(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	now := s.flow.Now()
	compositeID := uuid.Must(uuid.NewV7()).String()
	initial := approval.LeaveChain.Initial(actor, now)

	var (
		leaves       []leave.Leave
		charges      []balance.LeaveCharge
		medicalInReq bool
		claims       = map[leave.LeaveType]int{}
	)
	for _, seg := range segments {
		leaveType := leave.LeaveType(seg.LeaveType)
		fd := seg.FullDay

		days := WorkingDays(fd, cal)
		if days.IsZero() {
			return nil, fmt.Errorf("%w: %s to %s", leave.ErrNoWorkingDays,
				fd.From.Format(clock.DateLayout), fd.To.Format(clock.DateLayout))
		}

		if err := s.checkSegment(ctx, emp, leaveType, seg, days, cal, &medicalInReq, claims); err != nil {
			return nil, err
		}

		charges = append(charges, balance.LeaveCharge{
			EmployeeID:          emp.ID,
			LeaveType:           leaveType,
			Days:                days,
			Year:                fd.From.Year(),
			CompensatoryEntryID: seg.CompensatoryEntryID,
		})
		leaves = append(leaves, leave.Leave{
			CompositeLeaveID:     compositeID,
			EmployeeID:           emp.ID,
			DepartmentID:         emp.DepartmentID,
			LeaveType:            leaveType,
			FullDay:              fd,
			Reason:               seg.Reason,
			ChargeGivenTo:        seg.ChargeGivenTo,
			MedicalCertificateID: seg.MedicalCertificateID,
			CompensatoryEntryID:  seg.CompensatoryEntryID,
			Days:                 days,
			Status:               append(approval.Values(nil), initial.Values...),
			SubmitterRole:        actor.Role,
			History:              append(approval.History(nil), initial.Events...),
		})
	}

	if err := s.ledger.CanCharge(ctx, charges); err != nil {
		return nil, err
	}

	var created []leave.Leave
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.leaves.CreateBatch(txCtx, leaves)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create leave: %w", err)
	}

	s.flow.Logger().Info("leave submitted",
		"composite_leave_id", compositeID, "employee_id", emp.ID, "segments", len(created))

	s.flow.Announce(ctx, workflow.Transition{
		Chain:        approval.LeaveChain,
		RequestID:    compositeID,
		Label:        fmt.Sprintf("Leave request of %s", emp.FullName),
		SubmitterID:  emp.ID,
		ActorID:      actor.EmployeeID,
		DepartmentID: emp.DepartmentID,
		Outcome:      initial,
		Type:         notification.TypeLeaveSubmitted,
	})

	responses := make([]leave.LeaveResponse, 0, len(created))
	for _, l := range created {
		responses = append(responses, l.ToResponse())
	}
	return responses, nil
}

func (s *LeaveServiceImpl) checkSegment(
	ctx context.Context,
	emp employee.Employee,
	leaveType leave.LeaveType,
	seg leave.SegmentRequest,
	days decimal.Decimal,
	cal holiday.Calendar,
	medicalInReq *bool,
	claims map[leave.LeaveType]int,
) error {
	fd := seg.FullDay

	existing, err := s.leaves.ListActiveBetween(ctx, emp.ID, fd.From, fd.To)
	if err != nil {
		return fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: %s to %s", leave.ErrOverlappingLeave,
			existing[0].FullDay.From.Format(clock.DateLayout), existing[0].FullDay.To.Format(clock.DateLayout))
	}

	if seg.ChargeGivenTo != nil {
		holder, err := s.employees.GetByID(ctx, *seg.ChargeGivenTo)
		if err != nil {
			return err
		}
		holderLeaves, err := s.leaves.ListActiveBetween(ctx, holder.ID, fd.From, fd.To)
		if err != nil {
			return fmt.Errorf("failed to check charge-holder leave: %w", err)
		}
		for _, hl := range holderLeaves {
			if hl.LeaveType != leave.TypeEmergency {
				return leave.ErrChargeHolderOnLeave
			}
		}
	}

	switch leaveType {
	case leave.TypeRestrictedHolidays:
		for _, d := range fd.Dates() {
			if !cal.IsNonWorking(d) && !cal.IsRestricted(d) {
				return fmt.Errorf("%w: %s", leave.ErrNotRestrictedHoliday, d.Format(clock.DateLayout))
			}
		}

	case leave.TypeMedical:
		year := fd.From.Year()
		if *medicalInReq || (emp.Balances.MedicalLastUsedYear != nil && *emp.Balances.MedicalLastUsedYear == year) {
			return leave.ErrMedicalAlreadyUsed
		}
		count, err := s.leaves.CountActiveOfTypeInYear(ctx, emp.ID, leave.TypeMedical, year)
		if err != nil {
			return fmt.Errorf("failed to count medical leave: %w", err)
		}
		if count > 0 {
			return leave.ErrMedicalAlreadyUsed
		}
		*medicalInReq = true

	case leave.TypeMaternity, leave.TypePaternity:
		used := emp.Balances.MaternityClaims
		if leaveType == leave.TypePaternity {
			used = emp.Balances.PaternityClaims
		}
		claims[leaveType]++
		if used+claims[leaveType] > employee.MaxParentalClaims {
			return leave.ErrParentalClaimsExceeded
		}

	case leave.TypeCompensatory:
		if !clock.SameDay(fd.From, fd.To) || days.GreaterThan(decimal.NewFromInt(1)) {
			return leave.ErrCompensatoryTooLong
		}
	}
	return nil
}

// Decide implements leave.LeaveService.
func (s *LeaveServiceImpl) Decide(ctx context.Context, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	var (
		result  leave.Leave
		outcome approval.Outcome
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		l, err := s.leaves.GetByID(txCtx, req.LeaveID)
		if err != nil {
			return err
		}

		now := s.flow.Now()
		if err := approval.LeaveChain.CheckLock(l.Status, l.FullDay.From, now, s.flow.LockDays()); err != nil {
			return err
		}
		if req.Stage == "hod" && actor.Role == user.RoleHOD {
			ok, err := s.flow.CanDecideForDepartment(txCtx, actor, l.DepartmentID)
			if err != nil {
				return err
			}
			if !ok {
				return leave.ErrNotDepartmentApprover
			}
		}

		cal, err := s.holidays.Calendar(txCtx, l.FullDay.From, l.FullDay.To)
		if err != nil {
			return fmt.Errorf("failed to load holidays: %w", err)
		}
		if len(req.ParsedRejectedDates) > 0 {
			if req.Stage != "ceo" || approval.Value(req.Decision) != approval.Approved {
				return leave.ErrRejectedDatesStage
			}
			if err := checkRejectedDates(l, cal, req.ParsedRejectedDates); err != nil {
				return err
			}
		}

		outcome, err = approval.LeaveChain.Apply(l.Status, approval.Decision{
			Stage:     req.Stage,
			Value:     approval.Value(req.Decision),
			Reason:    req.Reason,
			Actor:     actor,
			Submitter: l.Submitter(),
		}, now)
		if err != nil {
			return err
		}

		l.Status = outcome.Values
		l.History = append(l.History, outcome.Events...)
		if req.Stage == "ceo" && approval.Value(req.Decision) == approval.Approved {
			l.RejectedDates = req.ParsedRejectedDates
			l.ApprovedDates = approvedDates(l, cal)
		}

		if outcome.Completed {
			if l.ApprovedDates == nil {
				l.ApprovedDates = approvedDates(l, cal)
			}
			days := decimal.Zero
			for _, d := range l.ApprovedDates {
				days = days.Add(l.FullDay.WeightOn(d))
			}
			if _, err := s.ledger.Deduct(txCtx, balance.LeaveKey(l.ID), balance.LeaveCharge{
				EmployeeID:          l.EmployeeID,
				LeaveType:           l.LeaveType,
				Days:                days,
				Year:                l.FullDay.From.Year(),
				CompensatoryEntryID: l.CompensatoryEntryID,
			}); err != nil {
				return err
			}
		}

		result, err = s.leaves.Update(txCtx, l)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.flow.Logger().Info("leave decided",
		"leave_id", result.ID, "stage", req.Stage, "decision", req.Decision, "actor_id", actor.EmployeeID)

	s.announce(ctx, result, actor, outcome, notification.TypeLeaveDecided)
	return result.ToResponse(), nil
}

// Unlock implements leave.LeaveService.
func (s *LeaveServiceImpl) Unlock(ctx context.Context, req leave.UnlockLeaveRequest) (leave.LeaveResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	var (
		result  leave.Leave
		outcome approval.Outcome
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		l, err := s.leaves.GetByID(txCtx, req.LeaveID)
		if err != nil {
			return err
		}

		outcome, err = approval.LeaveChain.Reopen(l.Status, req.Stage, req.Reason, actor, s.flow.Now())
		if err != nil {
			return err
		}

		l.Status = outcome.Values
		l.History = append(l.History, outcome.Events...)
		if req.Stage != "admin" {
			l.ApprovedDates = nil
			l.RejectedDates = nil
		}

		result, err = s.leaves.Update(txCtx, l)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.flow.Logger().Info("leave unlocked",
		"leave_id", result.ID, "stage", req.Stage, "actor_id", actor.EmployeeID)

	s.announce(ctx, result, actor, outcome, notification.TypeRequestUnlocked)
	return result.ToResponse(), nil
}

func (s *LeaveServiceImpl) announce(ctx context.Context, l leave.Leave, actor user.Actor, outcome approval.Outcome, typ notification.NotificationType) {
	s.flow.Announce(ctx, workflow.Transition{
		Chain:        approval.LeaveChain,
		RequestID:    l.ID,
		Label:        fmt.Sprintf("Leave %s to %s", l.FullDay.From.Format(clock.DateLayout), l.FullDay.To.Format(clock.DateLayout)),
		SubmitterID:  l.EmployeeID,
		ActorID:      actor.EmployeeID,
		DepartmentID: l.DepartmentID,
		Outcome:      outcome,
		Type:         typ,
	})
}

// GetLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeave(ctx context.Context, id string) (leave.LeaveResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	l, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	ok, err := s.flow.CanView(ctx, actor, l.EmployeeID, l.DepartmentID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !ok {
		return leave.LeaveResponse{}, leave.ErrUnauthorized
	}
	return l.ToResponse(), nil
}

// ListLeaves implements leave.LeaveService. An HOD only sees their
// department.
func (s *LeaveServiceImpl) ListLeaves(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}

	switch actor.Role {
	case user.RoleAdmin, user.RoleCEO:
	case user.RoleHOD:
		dept, err := s.flow.DepartmentOf(ctx, actor.EmployeeID)
		if err != nil {
			return leave.ListLeaveResponse{}, err
		}
		filter.DepartmentID = &dept
	default:
		return leave.ListLeaveResponse{}, leave.ErrUnauthorized
	}

	return s.list(ctx, filter)
}

// GetMyLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) GetMyLeaves(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}
	filter.EmployeeID = &actor.EmployeeID
	filter.DepartmentID = nil
	return s.list(ctx, filter)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	leaves, totalCount, err := s.leaves.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leaves: %w", err)
	}

	responses := make([]leave.LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		responses = append(responses, l.ToResponse())
	}

	return leave.ListLeaveResponse{
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(filter.Limit))),
		Leaves:     responses,
	}, nil
}

// WorkingDays counts the leave days of fd: Sundays and yearly holidays are
// free, half-day ends count 0.5.
func WorkingDays(fd leave.FullDay, cal holiday.Calendar) decimal.Decimal {
	days := decimal.Zero
	for _, d := range fd.Dates() {
		if cal.IsNonWorking(d) {
			continue
		}
		days = days.Add(fd.WeightOn(d))
	}
	return days
}

// approvedDates are the working dates of l that were not rejected.
func approvedDates(l leave.Leave, cal holiday.Calendar) []time.Time {
	out := []time.Time{}
	for _, d := range l.FullDay.Dates() {
		if cal.IsNonWorking(d) || l.IsDateRejected(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func checkRejectedDates(l leave.Leave, cal holiday.Calendar, rejected []time.Time) error {
	working := 0
	for _, d := range l.FullDay.Dates() {
		if !cal.IsNonWorking(d) {
			working++
		}
	}
	seen := make(map[string]bool, len(rejected))
	for _, d := range rejected {
		if !l.FullDay.Covers(d) || cal.IsNonWorking(d) {
			return fmt.Errorf("%w: %s", leave.ErrInvalidRejectedDates, d.Format(clock.DateLayout))
		}
		seen[d.Format(clock.DateLayout)] = true
	}
	if len(seen) >= working {
		return fmt.Errorf("%w: every date is rejected, reject the leave instead", leave.ErrInvalidRejectedDates)
	}
	return nil
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)
