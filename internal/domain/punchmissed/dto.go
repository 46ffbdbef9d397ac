package punchmissed

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type SubmitPunchMissedRequest struct {
	EmployeeID      string `json:"-"`
	PunchMissedDate string `json:"punch_missed_date"`
	When            string `json:"when"`       // Time IN, Time OUT
	YourInput       string `json:"your_input"` // HH:MM[:SS]
	Reason          string `json:"reason"`

	ParsedDate  time.Time       `json:"-"`
	ParsedInput clock.TimeOfDay `json:"-"`
}

func (r *SubmitPunchMissedRequest) Validate() error {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.PunchMissedDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "punch_missed_date", Message: "punch_missed_date must be in YYYY-MM-DD format"})
	}
	if !When(r.When).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "when", Message: "when must be one of: Time IN, Time OUT"})
	}
	input, err := clock.ParseTimeOfDay(r.YourInput)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "your_input", Message: "your_input must be in HH:MM or HH:MM:SS format"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.ParsedDate, r.ParsedInput = date, input
	return nil
}

type DecidePunchMissedRequest struct {
	PunchMissedID string  `json:"-"`
	Stage         string  `json:"stage"`    // hod, admin, ceo
	Decision      string  `json:"decision"` // Approved, Rejected
	Reason        string  `json:"reason"`
	AdminInput    *string `json:"admin_input,omitempty"`

	ParsedAdminInput *clock.TimeOfDay `json:"-"`
}

func (r *DecidePunchMissedRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := approval.PunchMissedChain.Index(r.Stage); !ok {
		errs = append(errs, validator.ValidationError{Field: "stage", Message: "stage must be one of: hod, admin, ceo"})
	}
	if !validator.IsInSlice(r.Decision, []string{string(approval.Approved), string(approval.Rejected)}) {
		errs = append(errs, validator.ValidationError{Field: "decision", Message: "decision must be one of: Approved, Rejected"})
	}
	if r.AdminInput != nil {
		t, err := clock.ParseTimeOfDay(*r.AdminInput)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "admin_input", Message: "admin_input must be in HH:MM or HH:MM:SS format"})
		} else {
			r.ParsedAdminInput = &t
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UnlockPunchMissedRequest struct {
	PunchMissedID string `json:"-"`
	Stage         string `json:"stage"`
	Reason        string `json:"reason"`
}

func (r *UnlockPunchMissedRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := approval.PunchMissedChain.Index(r.Stage); !ok {
		errs = append(errs, validator.ValidationError{Field: "stage", Message: "stage must be one of: hod, admin, ceo"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required to unlock a request"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchMissedFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	PendingStage *string `json:"pending_stage,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *PunchMissedFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.PendingStage != nil {
		if _, ok := approval.PunchMissedChain.Index(*f.PendingStage); !ok {
			errs = append(errs, validator.ValidationError{Field: "pending_stage", Message: "pending_stage must be one of: hod, admin, ceo"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchMissedResponse struct {
	ID              string                    `json:"id"`
	EmployeeID      string                    `json:"employee_id"`
	EmployeeName    *string                   `json:"employee_name,omitempty"`
	PunchMissedDate string                    `json:"punch_missed_date"`
	When            string                    `json:"when"`
	YourInput       string                    `json:"your_input"`
	AdminInput      *string                   `json:"admin_input"`
	Reason          string                    `json:"reason"`
	Status          map[string]approval.Value `json:"status"`
	History         approval.History          `json:"status_history"`
	CreatedAt       string                    `json:"created_at"`
	UpdatedAt       string                    `json:"updated_at"`
}

type ListPunchMissedResponse struct {
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Requests   []PunchMissedResponse `json:"requests"`
}

func (p PunchMissed) ToResponse() PunchMissedResponse {
	resp := PunchMissedResponse{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		EmployeeName:    p.EmployeeName,
		PunchMissedDate: p.PunchMissedDate.Format(clock.DateLayout),
		When:            string(p.When),
		YourInput:       p.YourInput.String(),
		Reason:          p.Reason,
		Status:          approval.PunchMissedChain.ToMap(p.Status),
		History:         p.History,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
	if p.AdminInput != nil {
		s := p.AdminInput.String()
		resp.AdminInput = &s
	}
	if resp.History == nil {
		resp.History = approval.History{}
	}
	return resp
}
