package punchmissed

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/workflow"
)

// PunchCorrector writes an approved correction into the day's attendance.
type PunchCorrector interface {
	CorrectPunch(ctx context.Context, employeeID string, date time.Time, direction attendance.Direction, at clock.TimeOfDay) (attendance.Attendance, error)
}

type PunchMissedServiceImpl struct {
	tx        database.Transactor
	requests  punchmissed.PunchMissedRepository
	employees employee.EmployeeRepository
	corrector PunchCorrector
	flow      *workflow.Helper
}

func NewPunchMissedService(
	tx database.Transactor,
	requests punchmissed.PunchMissedRepository,
	employees employee.EmployeeRepository,
	corrector PunchCorrector,
	flow *workflow.Helper,
) *PunchMissedServiceImpl {
	return &PunchMissedServiceImpl{
		tx:        tx,
		requests:  requests,
		employees: employees,
		corrector: corrector,
		flow:      flow,
	}
}

// Submit implements punchmissed.PunchMissedService.
func (s *PunchMissedServiceImpl) Submit(ctx context.Context, req punchmissed.SubmitPunchMissedRequest) (punchmissed.PunchMissedResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}

	now := s.flow.Now()
	if req.ParsedDate.After(clock.Date(now)) {
		return punchmissed.PunchMissedResponse{}, punchmissed.ErrFutureDate
	}

	var (
		created punchmissed.PunchMissed
		outcome approval.Outcome
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.GetByIDForUpdate(txCtx, actor.EmployeeID)
		if err != nil {
			return err
		}
		if !emp.IsActive() {
			return employee.ErrEmployeeInactive
		}
		if emp.SubmittedPunchMissedIn(now) {
			return punchmissed.ErrMonthlyLimitReached
		}

		outcome = approval.PunchMissedChain.Initial(actor, now)
		created, err = s.requests.Create(txCtx, punchmissed.PunchMissed{
			EmployeeID:      emp.ID,
			DepartmentID:    emp.DepartmentID,
			PunchMissedDate: req.ParsedDate,
			When:            punchmissed.When(req.When),
			YourInput:       req.ParsedInput,
			Reason:          req.Reason,
			Status:          outcome.Values,
			SubmitterRole:   actor.Role,
			History:         append(approval.History(nil), outcome.Events...),
		})
		if err != nil {
			return fmt.Errorf("failed to create punch missed request: %w", err)
		}
		return s.employees.SetLastPunchMissedSubmission(txCtx, emp.ID, now)
	})
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}

	s.flow.Logger().Info("punch missed submitted", "punch_missed_id", created.ID, "employee_id", created.EmployeeID)
	s.announce(ctx, created, actor, outcome, notification.TypePunchMissedSubmitted)
	return created.ToResponse(), nil
}

// Decide implements punchmissed.PunchMissedService.
func (s *PunchMissedServiceImpl) Decide(ctx context.Context, req punchmissed.DecidePunchMissedRequest) (punchmissed.PunchMissedResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}
	if req.ParsedAdminInput != nil && req.Stage != "admin" {
		return punchmissed.PunchMissedResponse{}, punchmissed.ErrAdminInputStage
	}

	var (
		result  punchmissed.PunchMissed
		outcome approval.Outcome
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.requests.GetByID(txCtx, req.PunchMissedID)
		if err != nil {
			return err
		}

		now := s.flow.Now()
		if err := approval.PunchMissedChain.CheckLock(p.Status, p.PunchMissedDate, now, s.flow.LockDays()); err != nil {
			return err
		}
		if req.Stage == "hod" && actor.Role == user.RoleHOD {
			ok, err := s.flow.CanDecideForDepartment(txCtx, actor, p.DepartmentID)
			if err != nil {
				return err
			}
			if !ok {
				return punchmissed.ErrNotDepartmentApprover
			}
		}

		outcome, err = approval.PunchMissedChain.Apply(p.Status, approval.Decision{
			Stage:     req.Stage,
			Value:     approval.Value(req.Decision),
			Reason:    req.Reason,
			Actor:     actor,
			Submitter: p.Submitter(),
		}, now)
		if err != nil {
			return err
		}

		p.Status = outcome.Values
		p.History = append(p.History, outcome.Events...)
		if req.ParsedAdminInput != nil {
			p.AdminInput = req.ParsedAdminInput
		}

		if outcome.Completed {
			direction := attendance.DirectionIn
			if p.When == punchmissed.WhenTimeOut {
				direction = attendance.DirectionOut
			}
			if _, err := s.corrector.CorrectPunch(txCtx, p.EmployeeID, p.PunchMissedDate, direction, p.CorrectedTime()); err != nil {
				return fmt.Errorf("failed to correct attendance: %w", err)
			}
		}

		result, err = s.requests.Update(txCtx, p)
		return err
	})
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}

	s.flow.Logger().Info("punch missed decided",
		"punch_missed_id", result.ID, "stage", req.Stage, "decision", req.Decision, "actor_id", actor.EmployeeID)

	s.announce(ctx, result, actor, outcome, notification.TypePunchMissedDecided)
	return result.ToResponse(), nil
}

// Unlock implements punchmissed.PunchMissedService.
func (s *PunchMissedServiceImpl) Unlock(ctx context.Context, req punchmissed.UnlockPunchMissedRequest) (punchmissed.PunchMissedResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}

	var (
		result  punchmissed.PunchMissed
		outcome approval.Outcome
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.requests.GetByID(txCtx, req.PunchMissedID)
		if err != nil {
			return err
		}

		outcome, err = approval.PunchMissedChain.Reopen(p.Status, req.Stage, req.Reason, actor, s.flow.Now())
		if err != nil {
			return err
		}

		p.Status = outcome.Values
		p.History = append(p.History, outcome.Events...)

		result, err = s.requests.Update(txCtx, p)
		return err
	})
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}

	s.flow.Logger().Info("punch missed unlocked",
		"punch_missed_id", result.ID, "stage", req.Stage, "actor_id", actor.EmployeeID)
	s.announce(ctx, result, actor, outcome, notification.TypeRequestUnlocked)
	return result.ToResponse(), nil
}

func (s *PunchMissedServiceImpl) announce(ctx context.Context, p punchmissed.PunchMissed, actor user.Actor, outcome approval.Outcome, typ notification.NotificationType) {
	s.flow.Announce(ctx, workflow.Transition{
		Chain:        approval.PunchMissedChain,
		RequestID:    p.ID,
		Label:        fmt.Sprintf("Punch missed %s (%s)", p.PunchMissedDate.Format(clock.DateLayout), p.When),
		SubmitterID:  p.EmployeeID,
		ActorID:      actor.EmployeeID,
		DepartmentID: p.DepartmentID,
		Outcome:      outcome,
		Type:         typ,
	})
}

// GetPunchMissed implements punchmissed.PunchMissedService.
func (s *PunchMissedServiceImpl) GetPunchMissed(ctx context.Context, id string) (punchmissed.PunchMissedResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}

	p, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}

	ok, err := s.flow.CanView(ctx, actor, p.EmployeeID, p.DepartmentID)
	if err != nil {
		return punchmissed.PunchMissedResponse{}, err
	}
	if !ok {
		return punchmissed.PunchMissedResponse{}, punchmissed.ErrUnauthorized
	}
	return p.ToResponse(), nil
}

// ListPunchMissed implements punchmissed.PunchMissedService. Employees see
// their own requests, an HOD their department.
func (s *PunchMissedServiceImpl) ListPunchMissed(ctx context.Context, filter punchmissed.PunchMissedFilter) (punchmissed.ListPunchMissedResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return punchmissed.ListPunchMissedResponse{}, err
	}

	switch actor.Role {
	case user.RoleAdmin, user.RoleCEO:
	case user.RoleHOD:
		dept, err := s.flow.DepartmentOf(ctx, actor.EmployeeID)
		if err != nil {
			return punchmissed.ListPunchMissedResponse{}, err
		}
		filter.DepartmentID = &dept
	default:
		filter.EmployeeID = &actor.EmployeeID
		filter.DepartmentID = nil
	}

	if err := filter.Validate(); err != nil {
		return punchmissed.ListPunchMissedResponse{}, err
	}

	requests, totalCount, err := s.requests.List(ctx, filter)
	if err != nil {
		return punchmissed.ListPunchMissedResponse{}, fmt.Errorf("failed to list punch missed requests: %w", err)
	}

	responses := make([]punchmissed.PunchMissedResponse, 0, len(requests))
	for _, p := range requests {
		responses = append(responses, p.ToResponse())
	}

	return punchmissed.ListPunchMissedResponse{
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

var _ punchmissed.PunchMissedService = (*PunchMissedServiceImpl)(nil)
