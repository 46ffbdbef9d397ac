package od

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

// OD is an on-duty request: the employee is out of office on official work
// from DateOut/TimeOut until DateIn/TimeIn.
type OD struct {
	ID               string
	EmployeeID       string
	DepartmentID     string
	DateOut          time.Time
	TimeOut          clock.TimeOfDay
	DateIn           time.Time
	TimeIn           clock.TimeOfDay
	Purpose          string
	PlaceUnitVisit   string
	Status           approval.Values
	SubmitterRole    user.Role
	History          approval.History
	ActualPunchTimes PunchPairs
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName *string
}

func (o OD) Submitter() user.Actor {
	return user.Actor{EmployeeID: o.EmployeeID, Role: o.SubmitterRole}
}

func (o OD) IsRejected() bool {
	return approval.ODChain.IsRejected(o.Status)
}

// Covers reports whether date falls in the OD window.
func (o OD) Covers(date time.Time) bool {
	d := clock.Date(date)
	return !d.Before(clock.Date(o.DateOut)) && !d.After(clock.Date(o.DateIn))
}

// WindowOn returns the part of the OD spent on date. Days strictly inside a
// multi-day OD report full=true.
func (o OD) WindowOn(date time.Time) (from, to clock.TimeOfDay, full bool) {
	first := clock.SameDay(date, o.DateOut)
	last := clock.SameDay(date, o.DateIn)
	switch {
	case first && last:
		return o.TimeOut, o.TimeIn, false
	case first:
		return o.TimeOut, DayEnd, false
	case last:
		return DayStart, o.TimeIn, false
	default:
		return DayStart, DayEnd, true
	}
}

// Office hours used to close the window of the first and last day of a
// multi-day OD.
var (
	DayStart = clock.At(9, 0, 0)
	DayEnd   = clock.At(17, 30, 0)
)

// PunchPair is the first IN and last OUT recorded on one day of an OD.
type PunchPair struct {
	Date string  `json:"date"` // YYYY-MM-DD
	In   *string `json:"in,omitempty"`
	Out  *string `json:"out,omitempty"`
}

type PunchPairs []PunchPair

// Replace returns the pairs with the entry for p.Date replaced by p.
func (ps PunchPairs) Replace(p PunchPair) PunchPairs {
	out := make(PunchPairs, 0, len(ps)+1)
	for _, e := range ps {
		if e.Date != p.Date {
			out = append(out, e)
		}
	}
	return append(out, p)
}

// Value implements driver.Valuer for JSONB storage
func (ps PunchPairs) Value() (driver.Value, error) {
	if ps == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(ps)
}

// Scan implements sql.Scanner for JSONB retrieval
func (ps *PunchPairs) Scan(value interface{}) error {
	if value == nil {
		*ps = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ps)
	case string:
		return json.Unmarshal([]byte(v), ps)
	}
	return errors.New("failed to scan PunchPairs: invalid type")
}
