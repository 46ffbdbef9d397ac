package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// ========================================
// RECONCILE DTOs
// ========================================

type ReconcileRequest struct {
	Date        string   `json:"date"`                   // YYYY-MM-DD
	EmployeeIDs []string `json:"employee_ids,omitempty"` // empty means every active employee
}

func (r *ReconcileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids",
				Message: "employee_ids must not contain empty values",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// PUNCH INGESTION DTOs
// ========================================

type PunchLogRequest struct {
	EmployeeID string `json:"employee_id"`
	LogDate    string `json:"log_date"` // YYYY-MM-DD
	LogTime    string `json:"log_time"` // HH:MM:SS, stored as received
	Direction  string `json:"direction"`
}

type IngestPunchesRequest struct {
	Punches []PunchLogRequest `json:"punches"`
}

func (r *IngestPunchesRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Punches) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "punches",
			Message: "at least one punch is required",
		})
	}

	for _, p := range r.Punches {
		if validator.IsEmpty(p.EmployeeID) {
			errs = append(errs, validator.ValidationError{
				Field:   "punches.employee_id",
				Message: "employee_id is required",
			})
		}
		if _, valid := validator.IsValidDate(p.LogDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "punches.log_date",
				Message: "log_date must be in YYYY-MM-DD format",
			})
		}
		if !Direction(strings.ToUpper(p.Direction)).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "punches.direction",
				Message: "direction must be one of: IN, OUT",
			})
		}
		if len(errs) > 0 {
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// LATE ARRIVAL DTOs
// ========================================

type LateArrivalReasonRequest struct {
	AttendanceID string `json:"-"`
	Reason       string `json:"reason"`
}

func (r *LateArrivalReasonRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LateArrivalDecisionRequest struct {
	AttendanceID string `json:"-"`
	Decision     string `json:"decision"` // Allowed, Denied
	Remarks      string `json:"remarks"`
}

func (r *LateArrivalDecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Decision, []string{string(LAAllowed), string(LADenied)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: Allowed, Denied",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// LIST DTOs
// ========================================

type AttendanceFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	LAPending    bool    `json:"la_pending,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Parsed by Validate
	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if d, valid := validator.IsValidDate(*f.StartDate); valid {
			f.From = &d
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if d, valid := validator.IsValidDate(*f.EndDate); valid {
			f.To = &d
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	LogDate         string  `json:"log_date"`
	TimeIn          *string `json:"time_in"`
	TimeOut         *string `json:"time_out"`
	Status          string  `json:"status"`
	HalfDay         *string `json:"half_day"`
	OvertimeMinutes int     `json:"ot"`
	LAApproval      *string `json:"la_approval"`
	LAReason        *string `json:"la_reason,omitempty"`
	LARemarks       *string `json:"la_remarks,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// ToResponse renders the record for the API.
func (a Attendance) ToResponse() AttendanceResponse {
	resp := AttendanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		LogDate:         a.LogDate.Format(clock.DateLayout),
		Status:          a.Status.String(),
		OvertimeMinutes: a.OvertimeMinutes,
		LAReason:        a.LAReason,
		LARemarks:       a.LARemarks,
		Remarks:         a.Remarks,
		UpdatedAt:       a.UpdatedAt.Format(time.RFC3339),
	}
	if a.TimeIn != nil {
		s := a.TimeIn.String()
		resp.TimeIn = &s
	}
	if a.TimeOut != nil {
		s := a.TimeOut.String()
		resp.TimeOut = &s
	}
	if a.HalfDay != nil {
		s := string(*a.HalfDay)
		resp.HalfDay = &s
	}
	if a.LAApproval != nil {
		s := string(*a.LAApproval)
		resp.LAApproval = &s
	}
	return resp
}
