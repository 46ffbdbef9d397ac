package od

import (
	"context"
	"fmt"
	"math"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/workflow"
)

type ODServiceImpl struct {
	tx   database.Transactor
	ods  od.ODRepository
	flow *workflow.Helper
}

func NewODService(tx database.Transactor, ods od.ODRepository, flow *workflow.Helper) *ODServiceImpl {
	return &ODServiceImpl{tx: tx, ods: ods, flow: flow}
}

// Submit implements od.ODService.
func (s *ODServiceImpl) Submit(ctx context.Context, req od.SubmitODRequest) (od.ODResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return od.ODResponse{}, err
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		return od.ODResponse{}, err
	}

	emp, err := s.flow.Submitter(ctx, actor.EmployeeID)
	if err != nil {
		return od.ODResponse{}, err
	}

	candidate := od.OD{
		EmployeeID:     emp.ID,
		DepartmentID:   emp.DepartmentID,
		DateOut:        req.ParsedDateOut,
		TimeOut:        req.ParsedTimeOut,
		DateIn:         req.ParsedDateIn,
		TimeIn:         req.ParsedTimeIn,
		Purpose:        req.Purpose,
		PlaceUnitVisit: req.PlaceUnitVisit,
		SubmitterRole:  actor.Role,
	}

	existing, err := s.ods.ListActiveCovering(ctx, emp.ID, candidate.DateOut, candidate.DateIn)
	if err != nil {
		return od.ODResponse{}, fmt.Errorf("failed to check overlapping OD: %w", err)
	}
	for _, o := range existing {
		if windowsOverlap(o, candidate) {
			return od.ODResponse{}, od.ErrOverlappingOD
		}
	}

	outcome := approval.ODChain.Initial(actor, s.flow.Now())
	candidate.Status = outcome.Values
	candidate.History = append(approval.History(nil), outcome.Events...)

	var created od.OD
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.ods.Create(txCtx, candidate)
		return err
	})
	if err != nil {
		return od.ODResponse{}, fmt.Errorf("failed to create OD: %w", err)
	}

	s.flow.Logger().Info("OD submitted", "od_id", created.ID, "employee_id", emp.ID)
	s.announce(ctx, created, actor, outcome, notification.TypeODSubmitted)
	return created.ToResponse(), nil
}

// windowsOverlap compares the exact out and in instants, so two ODs on one
// day may sit side by side.
func windowsOverlap(a, b od.OD) bool {
	aStart, aEnd := a.TimeOut.On(a.DateOut), a.TimeIn.On(a.DateIn)
	bStart, bEnd := b.TimeOut.On(b.DateOut), b.TimeIn.On(b.DateIn)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Decide implements od.ODService.
func (s *ODServiceImpl) Decide(ctx context.Context, req od.DecideODRequest) (od.ODResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return od.ODResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return od.ODResponse{}, err
	}

	var (
		result  od.OD
		outcome approval.Outcome
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		o, err := s.ods.GetByID(txCtx, req.ODID)
		if err != nil {
			return err
		}

		now := s.flow.Now()
		if err := approval.ODChain.CheckLock(o.Status, o.DateOut, now, s.flow.LockDays()); err != nil {
			return err
		}
		if actor.Role == user.RoleHOD && (req.Stage == "initial" || req.Stage == "hod") {
			ok, err := s.flow.CanDecideForDepartment(txCtx, actor, o.DepartmentID)
			if err != nil {
				return err
			}
			if !ok {
				return od.ErrNotDepartmentApprover
			}
		}

		outcome, err = approval.ODChain.Apply(o.Status, approval.Decision{
			Stage:     req.Stage,
			Value:     approval.Value(req.Decision),
			Reason:    req.Reason,
			Actor:     actor,
			Submitter: o.Submitter(),
		}, now)
		if err != nil {
			return err
		}

		o.Status = outcome.Values
		o.History = append(o.History, outcome.Events...)

		result, err = s.ods.Update(txCtx, o)
		return err
	})
	if err != nil {
		return od.ODResponse{}, err
	}

	s.flow.Logger().Info("OD decided",
		"od_id", result.ID, "stage", req.Stage, "decision", req.Decision, "actor_id", actor.EmployeeID)

	s.announce(ctx, result, actor, outcome, notification.TypeODDecided)
	return result.ToResponse(), nil
}

// Unlock implements od.ODService.
func (s *ODServiceImpl) Unlock(ctx context.Context, req od.UnlockODRequest) (od.ODResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return od.ODResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return od.ODResponse{}, err
	}

	var (
		result  od.OD
		outcome approval.Outcome
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		o, err := s.ods.GetByID(txCtx, req.ODID)
		if err != nil {
			return err
		}

		outcome, err = approval.ODChain.Reopen(o.Status, req.Stage, req.Reason, actor, s.flow.Now())
		if err != nil {
			return err
		}

		o.Status = outcome.Values
		o.History = append(o.History, outcome.Events...)

		result, err = s.ods.Update(txCtx, o)
		return err
	})
	if err != nil {
		return od.ODResponse{}, err
	}

	s.flow.Logger().Info("OD unlocked", "od_id", result.ID, "stage", req.Stage, "actor_id", actor.EmployeeID)
	s.announce(ctx, result, actor, outcome, notification.TypeRequestUnlocked)
	return result.ToResponse(), nil
}

func (s *ODServiceImpl) announce(ctx context.Context, o od.OD, actor user.Actor, outcome approval.Outcome, typ notification.NotificationType) {
	s.flow.Announce(ctx, workflow.Transition{
		Chain:        approval.ODChain,
		RequestID:    o.ID,
		Label:        fmt.Sprintf("OD %s %s to %s %s", o.DateOut.Format(clock.DateLayout), o.TimeOut.HHMM(), o.DateIn.Format(clock.DateLayout), o.TimeIn.HHMM()),
		SubmitterID:  o.EmployeeID,
		ActorID:      actor.EmployeeID,
		DepartmentID: o.DepartmentID,
		Outcome:      outcome,
		Type:         typ,
	})
}

// GetOD implements od.ODService.
func (s *ODServiceImpl) GetOD(ctx context.Context, id string) (od.ODResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return od.ODResponse{}, err
	}

	o, err := s.ods.GetByID(ctx, id)
	if err != nil {
		return od.ODResponse{}, err
	}

	ok, err := s.flow.CanView(ctx, actor, o.EmployeeID, o.DepartmentID)
	if err != nil {
		return od.ODResponse{}, err
	}
	if !ok {
		return od.ODResponse{}, od.ErrUnauthorized
	}
	return o.ToResponse(), nil
}

// ListODs implements od.ODService.
func (s *ODServiceImpl) ListODs(ctx context.Context, filter od.ODFilter) (od.ListODResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return od.ListODResponse{}, err
	}

	switch actor.Role {
	case user.RoleAdmin, user.RoleCEO:
	case user.RoleHOD:
		dept, err := s.flow.DepartmentOf(ctx, actor.EmployeeID)
		if err != nil {
			return od.ListODResponse{}, err
		}
		filter.DepartmentID = &dept
	default:
		return od.ListODResponse{}, od.ErrUnauthorized
	}
	return s.list(ctx, filter)
}

// GetMyODs implements od.ODService.
func (s *ODServiceImpl) GetMyODs(ctx context.Context, filter od.ODFilter) (od.ListODResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return od.ListODResponse{}, err
	}
	filter.EmployeeID = &actor.EmployeeID
	filter.DepartmentID = nil
	return s.list(ctx, filter)
}

func (s *ODServiceImpl) list(ctx context.Context, filter od.ODFilter) (od.ListODResponse, error) {
	if err := filter.Validate(); err != nil {
		return od.ListODResponse{}, err
	}

	ods, totalCount, err := s.ods.List(ctx, filter)
	if err != nil {
		return od.ListODResponse{}, fmt.Errorf("failed to list ODs: %w", err)
	}

	responses := make([]od.ODResponse, 0, len(ods))
	for _, o := range ods {
		responses = append(responses, o.ToResponse())
	}

	return od.ListODResponse{
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(filter.Limit))),
		ODs:        responses,
	}, nil
}

var _ od.ODService = (*ODServiceImpl)(nil)
