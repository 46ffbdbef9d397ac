package od

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type SubmitODRequest struct {
	EmployeeID     string `json:"-"`
	DateOut        string `json:"date_out"`
	TimeOut        string `json:"time_out"`
	DateIn         string `json:"date_in"`
	TimeIn         string `json:"time_in"`
	Purpose        string `json:"purpose"`
	PlaceUnitVisit string `json:"place_unit_visit"`

	// Parsed by Validate
	ParsedDateOut time.Time       `json:"-"`
	ParsedTimeOut clock.TimeOfDay `json:"-"`
	ParsedDateIn  time.Time       `json:"-"`
	ParsedTimeIn  clock.TimeOfDay `json:"-"`
}

func (r *SubmitODRequest) Validate() error {
	var errs validator.ValidationErrors

	dateOut, okOut := validator.IsValidDate(r.DateOut)
	if !okOut {
		errs = append(errs, validator.ValidationError{Field: "date_out", Message: "date_out must be in YYYY-MM-DD format"})
	}
	dateIn, okIn := validator.IsValidDate(r.DateIn)
	if !okIn {
		errs = append(errs, validator.ValidationError{Field: "date_in", Message: "date_in must be in YYYY-MM-DD format"})
	}
	timeOut, err := clock.ParseTimeOfDay(r.TimeOut)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "time_out", Message: "time_out must be in HH:MM or HH:MM:SS format"})
	}
	timeIn, err := clock.ParseTimeOfDay(r.TimeIn)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "time_in", Message: "time_in must be in HH:MM or HH:MM:SS format"})
	}
	if validator.IsEmpty(r.Purpose) {
		errs = append(errs, validator.ValidationError{Field: "purpose", Message: "purpose is required"})
	}
	if validator.IsEmpty(r.PlaceUnitVisit) {
		errs = append(errs, validator.ValidationError{Field: "place_unit_visit", Message: "place_unit_visit is required"})
	}

	if len(errs) == 0 {
		if dateIn.Before(dateOut) || (clock.SameDay(dateIn, dateOut) && timeIn <= timeOut) {
			errs = append(errs, validator.ValidationError{Field: "date_in", Message: ErrInvalidWindow.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	r.ParsedDateOut, r.ParsedTimeOut = dateOut, timeOut
	r.ParsedDateIn, r.ParsedTimeIn = dateIn, timeIn
	return nil
}

type DecideODRequest struct {
	ODID     string `json:"-"`
	Stage    string `json:"stage"`    // initial, admin, hod, ceo, finalAdmin
	Decision string `json:"decision"` // Allowed, Denied, Approved, Rejected, Acknowledged
	Reason   string `json:"reason"`
}

func (r *DecideODRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := approval.ODChain.Index(r.Stage); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "stage",
			Message: "stage must be one of: initial, admin, hod, ceo, finalAdmin",
		})
	}
	if validator.IsEmpty(r.Decision) {
		errs = append(errs, validator.ValidationError{Field: "decision", Message: "decision is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UnlockODRequest struct {
	ODID   string `json:"-"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

func (r *UnlockODRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := approval.ODChain.Index(r.Stage); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "stage",
			Message: "stage must be one of: initial, admin, hod, ceo, finalAdmin",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required to unlock a request"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ODFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	PendingStage *string `json:"pending_stage,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ODFilter) Validate() error {
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
		if _, ok := approval.ODChain.Index(*f.PendingStage); !ok {
			errs = append(errs, validator.ValidationError{Field: "pending_stage", Message: "pending_stage must be one of: initial, admin, hod, ceo, finalAdmin"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ODResponse struct {
	ID               string                    `json:"id"`
	EmployeeID       string                    `json:"employee_id"`
	EmployeeName     *string                   `json:"employee_name,omitempty"`
	DateOut          string                    `json:"date_out"`
	TimeOut          string                    `json:"time_out"`
	DateIn           string                    `json:"date_in"`
	TimeIn           string                    `json:"time_in"`
	Purpose          string                    `json:"purpose"`
	PlaceUnitVisit   string                    `json:"place_unit_visit"`
	InitialStatus    approval.Value            `json:"initial_status"`
	Status           map[string]approval.Value `json:"status"`
	History          approval.History          `json:"status_history"`
	ActualPunchTimes PunchPairs                `json:"actual_punch_times"`
	CreatedAt        string                    `json:"created_at"`
	UpdatedAt        string                    `json:"updated_at"`
}

type ListODResponse struct {
	TotalCount int64        `json:"total_count"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"total_pages"`
	ODs        []ODResponse `json:"ods"`
}

func (o OD) ToResponse() ODResponse {
	stages := approval.ODChain.ToMap(o.Status)
	initial := stages["initial"]
	delete(stages, "initial")

	resp := ODResponse{
		ID:               o.ID,
		EmployeeID:       o.EmployeeID,
		EmployeeName:     o.EmployeeName,
		DateOut:          o.DateOut.Format(clock.DateLayout),
		TimeOut:          o.TimeOut.String(),
		DateIn:           o.DateIn.Format(clock.DateLayout),
		TimeIn:           o.TimeIn.String(),
		Purpose:          o.Purpose,
		PlaceUnitVisit:   o.PlaceUnitVisit,
		InitialStatus:    initial,
		Status:           stages,
		History:          o.History,
		ActualPunchTimes: o.ActualPunchTimes,
		CreatedAt:        o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        o.UpdatedAt.Format(time.RFC3339),
	}
	if resp.History == nil {
		resp.History = approval.History{}
	}
	if resp.ActualPunchTimes == nil {
		resp.ActualPunchTimes = PunchPairs{}
	}
	return resp
}
