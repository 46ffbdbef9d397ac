// Package workflow holds what the leave, OD and punch-missed services share
// around the approval chain: who the actor is, whether an HOD may decide a
// department's request, and who hears about a transition.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

// DefaultLockDays is how long a decided request stays open to decisions.
const DefaultLockDays = 30

type Helper struct {
	employees employee.EmployeeRepository
	notifier  notification.Notifier
	logger    *slog.Logger
	lockDays  int
	now       func() time.Time
}

func NewHelper(employees employee.EmployeeRepository, notifier notification.Notifier, logger *slog.Logger, lockDays int) *Helper {
	if logger == nil {
		logger = slog.Default()
	}
	if lockDays == 0 {
		lockDays = DefaultLockDays
	}
	return &Helper{
		employees: employees,
		notifier:  notifier,
		logger:    logger,
		lockDays:  lockDays,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (h *Helper) SetClock(now func() time.Time) {
	h.now = now
}

func (h *Helper) Now() time.Time {
	return h.now()
}

func (h *Helper) LockDays() int {
	return h.lockDays
}

func (h *Helper) Logger() *slog.Logger {
	return h.logger
}

// Actor returns the authenticated actor of the request.
func (h *Helper) Actor(ctx context.Context) (user.Actor, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok || actor.EmployeeID == "" || !actor.Role.IsValid() {
		return user.Actor{}, user.ErrUnauthenticated
	}
	return actor, nil
}

// Submitter loads the employee filing a request and checks they are active.
func (h *Helper) Submitter(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := h.employees.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// CanDecideForDepartment reports whether actor may decide a stage of a
// request from departmentID. Only HOD stages are scoped by department.
func (h *Helper) CanDecideForDepartment(ctx context.Context, actor user.Actor, departmentID string) (bool, error) {
	if actor.Role != user.RoleHOD {
		return true, nil
	}
	emp, err := h.employees.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return false, err
	}
	return emp.DepartmentID == departmentID, nil
}

// CanView reports whether actor may read a request of ownerID in
// departmentID: the owner, their HOD, Admin and CEO.
func (h *Helper) CanView(ctx context.Context, actor user.Actor, ownerID, departmentID string) (bool, error) {
	if actor.EmployeeID == ownerID || actor.Role == user.RoleAdmin || actor.Role == user.RoleCEO {
		return true, nil
	}
	if actor.Role != user.RoleHOD {
		return false, nil
	}
	return h.CanDecideForDepartment(ctx, actor, departmentID)
}

// DepartmentOf returns the department of an employee.
func (h *Helper) DepartmentOf(ctx context.Context, employeeID string) (string, error) {
	emp, err := h.employees.GetByID(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return emp.DepartmentID, nil
}

// StageRecipients returns who decides stageKey: the HODs of the department
// or every Admin or CEO.
func (h *Helper) StageRecipients(ctx context.Context, chain approval.Chain, stageKey, departmentID string) ([]string, error) {
	i, ok := chain.Index(stageKey)
	if !ok {
		return nil, nil
	}
	role := chain.Stages[i].Role

	var (
		emps []employee.Employee
		err  error
	)
	if role == user.RoleHOD {
		emps, err = h.employees.ListByDepartment(ctx, departmentID)
	} else {
		emps, err = h.employees.ListByRole(ctx, role)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(emps))
	for _, e := range emps {
		if e.Role == role {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

// Transition describes a committed change of a request.
type Transition struct {
	Chain        approval.Chain
	RequestID    string
	Label        string // e.g. "Leave 2025-03-04 to 2025-03-05"
	SubmitterID  string
	ActorID      string
	DepartmentID string
	Outcome      approval.Outcome
	Type         notification.NotificationType
}

// Announce tells the submitter what happened and the next stage's deciders
// that a request waits for them. Failures are logged and never returned.
func (h *Helper) Announce(ctx context.Context, t Transition) {
	if len(t.Outcome.Events) > 0 && t.SubmitterID != t.ActorID {
		h.notify(ctx, notification.CreateNotificationRequest{
			RecipientID: t.SubmitterID,
			SenderID:    &t.ActorID,
			Type:        t.Type,
			Title:       fmt.Sprintf("%s updated", t.Label),
			Message:     describe(t.Outcome.Events),
			Data:        h.data(t),
		})
	}

	if t.Outcome.NextStage == "" {
		return
	}
	recipients, err := h.StageRecipients(ctx, t.Chain, t.Outcome.NextStage, t.DepartmentID)
	if err != nil {
		h.logger.Warn("failed to resolve approvers",
			"kind", t.Chain.Kind, "request_id", t.RequestID, "stage", t.Outcome.NextStage, "error", err)
		return
	}
	for _, id := range recipients {
		if id == t.SubmitterID {
			continue
		}
		h.notify(ctx, notification.CreateNotificationRequest{
			RecipientID: id,
			SenderID:    &t.ActorID,
			Type:        t.Type,
			Title:       fmt.Sprintf("%s awaits your decision", t.Label),
			Message:     fmt.Sprintf("%s stage is pending", t.Outcome.NextStage),
			Data:        h.data(t),
		})
	}
}

// Tell sends one notification, logging a failure.
func (h *Helper) Tell(ctx context.Context, req notification.CreateNotificationRequest) {
	h.notify(ctx, req)
}

func (h *Helper) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Notify(ctx, req); err != nil {
		h.logger.Warn("failed to send notification",
			"recipient_id", req.RecipientID, "type", req.Type, "error", err)
	}
}

func (h *Helper) data(t Transition) map[string]interface{} {
	return map[string]interface{}{
		"kind":       string(t.Chain.Kind),
		"request_id": t.RequestID,
		"status":     t.Chain.ToMap(t.Outcome.Values),
	}
}

func describe(events []approval.Event) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		p := fmt.Sprintf("%s: %s", e.Stage, e.Status)
		if e.Reason != "" {
			p += " (" + e.Reason + ")"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}
