package attendance

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/status"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

// LAApproval tracks the late-arrival approval flow of a day.
type LAApproval string

const (
	LAPending LAApproval = "Pending"
	LAAllowed LAApproval = "Allowed"
	LADenied  LAApproval = "Denied"
)

// Attendance is the single record of one employee on one day.
// (EmployeeID, LogDate) is unique.
type Attendance struct {
	ID              string
	EmployeeID      string
	LogDate         time.Time
	TimeIn          *clock.TimeOfDay
	TimeOut         *clock.TimeOfDay
	Status          status.Status
	HalfDay         *status.HalfDayMarker
	OvertimeMinutes int
	LAApproval      *LAApproval
	LAReason        *string // employee's explanation
	LARemarks       *string // decider's remarks
	LADecidedBy     *string
	Remarks         *string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	EmployeeName *string
}

// IsNew reports whether the record has not been stored yet.
func (a Attendance) IsNew() bool {
	return a.Version == 0
}

type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// RawPunchLog is one biometric punch. LogTime is kept as received so a
// malformed value can be reported instead of rejected at ingestion.
type RawPunchLog struct {
	ID         string
	EmployeeID string
	LogDate    time.Time
	LogTime    string
	Direction  Direction
	Processed  bool
	CreatedAt  time.Time
}

// Failure is one employee the reconciler could not process.
type Failure struct {
	EmployeeID string `json:"employee_id"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error"`
}

// Report summarises one reconcile run.
type Report struct {
	Date             string    `json:"date"`
	Employees        int       `json:"employees"`
	Created          int       `json:"created"`
	Updated          int       `json:"updated"`
	Unchanged        int       `json:"unchanged"`
	Skipped          int       `json:"skipped"`
	PunchesProcessed int       `json:"punches_processed"`
	MalformedPunches int       `json:"malformed_punches"`
	Failures         []Failure `json:"failures"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}
