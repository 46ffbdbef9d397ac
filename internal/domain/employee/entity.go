package employee

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Employee is the directory entry referenced by requests and attendance.
// Balance fields are only written through the leave ledger.
type Employee struct {
	ID                        string
	EmployeeCode              string
	FullName                  string
	Email                     string
	DepartmentID              string
	Role                      user.Role
	EmploymentStatus          EmploymentStatus
	Balances                  Balances
	LastPunchMissedSubmission *time.Time
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// Balances are the leave counters of one employee.
type Balances struct {
	PaidLeaves          decimal.Decimal
	MedicalLeaves       decimal.Decimal
	RestrictedHolidays  decimal.Decimal
	MaternityClaims     int
	PaternityClaims     int
	UnpaidLeavesTaken   decimal.Decimal
	MedicalLastUsedYear *int
}

const MaxParentalClaims = 2

type CompensatoryStatus string

const (
	CompensatoryAvailable CompensatoryStatus = "Available"
	CompensatoryUsed      CompensatoryStatus = "Used"
)

// CompensatoryEntry is extra time worked that can be taken back as leave.
type CompensatoryEntry struct {
	ID         string
	EmployeeID string
	EarnedOn   time.Time
	Hours      decimal.Decimal
	Status     CompensatoryStatus
	UsedFor    *string // leave ID or late-arrival deduction key
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Hours a compensatory entry must hold to cover a full or half day.
var (
	CompensatoryFullDayHours = decimal.NewFromInt(8)
	CompensatoryHalfDayHours = decimal.NewFromInt(4)
)

// Covers reports whether the entry can pay for the given number of days.
func (c CompensatoryEntry) Covers(days decimal.Decimal) bool {
	if c.Status != CompensatoryAvailable {
		return false
	}
	need := CompensatoryFullDayHours.Mul(days)
	return c.Hours.GreaterThanOrEqual(need)
}

// IsActive reports whether the employee still works here.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// SubmittedPunchMissedIn reports whether a punch-missed form was already
// filed in the calendar month of date.
func (e Employee) SubmittedPunchMissedIn(date time.Time) bool {
	if e.LastPunchMissedSubmission == nil {
		return false
	}
	ly, lm, _ := e.LastPunchMissedSubmission.Date()
	y, m, _ := date.Date()
	return ly == y && lm == m
}
