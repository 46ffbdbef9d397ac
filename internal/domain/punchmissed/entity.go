package punchmissed

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type When string

const (
	WhenTimeIn  When = "Time IN"
	WhenTimeOut When = "Time OUT"
)

func (w When) IsValid() bool {
	return w == WhenTimeIn || w == WhenTimeOut
}

// PunchMissed is a request to correct a missing punch for one day.
type PunchMissed struct {
	ID              string
	EmployeeID      string
	DepartmentID    string
	PunchMissedDate time.Time
	When            When
	YourInput       clock.TimeOfDay
	AdminInput      *clock.TimeOfDay
	Reason          string
	Status          approval.Values
	SubmitterRole   user.Role
	History         approval.History
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	EmployeeName *string
}

func (p PunchMissed) Submitter() user.Actor {
	return user.Actor{EmployeeID: p.EmployeeID, Role: p.SubmitterRole}
}

// CorrectedTime is the admin-verified time, or the employee's claim when
// the admin did not change it.
func (p PunchMissed) CorrectedTime() clock.TimeOfDay {
	if p.AdminInput != nil {
		return *p.AdminInput
	}
	return p.YourInput
}
