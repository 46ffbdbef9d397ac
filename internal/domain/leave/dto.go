package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// ========================================
// SUBMIT DTOs
// ========================================

type SegmentRequest struct {
	LeaveType            string  `json:"leave_type"`
	From                 string  `json:"from"` // YYYY-MM-DD
	To                   string  `json:"to"`   // YYYY-MM-DD
	FromDuration         string  `json:"from_duration"`
	FromSession          *string `json:"from_session,omitempty"`
	ToDuration           string  `json:"to_duration"`
	ToSession            *string `json:"to_session,omitempty"`
	Reason               string  `json:"reason"`
	ChargeGivenTo        *string `json:"charge_given_to,omitempty"`
	MedicalCertificateID *string `json:"medical_certificate_id,omitempty"`
	CompensatoryEntryID  *string `json:"compensatory_entry_id,omitempty"`

	// Parsed by Validate
	FullDay FullDay `json:"-"`
}

type SubmitLeaveRequest struct {
	EmployeeID string           `json:"-"`
	Segments   []SegmentRequest `json:"segments"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Segments) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "segments",
			Message: "at least one leave segment is required",
		})
	}

	for i := range r.Segments {
		errs = append(errs, r.Segments[i].validate(fmt.Sprintf("segments[%d]", i), r.EmployeeID)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *SegmentRequest) validate(prefix, employeeID string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	field := func(name string) string { return prefix + "." + name }

	if !LeaveType(s.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   field("leave_type"),
			Message: "leave_type must be one of: Casual, Medical, Maternity, Paternity, Compensatory, RestrictedHolidays, LWP, Emergency",
		})
	}

	from, fromOK := validator.IsValidDate(s.From)
	if !fromOK {
		errs = append(errs, validator.ValidationError{
			Field:   field("from"),
			Message: "from must be in YYYY-MM-DD format",
		})
	}
	to, toOK := validator.IsValidDate(s.To)
	if !toOK {
		errs = append(errs, validator.ValidationError{
			Field:   field("to"),
			Message: "to must be in YYYY-MM-DD format",
		})
	}
	if fromOK && toOK && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   field("to"),
			Message: "to must not be before from",
		})
	}

	fromDuration, fromSession, durErrs := parseDuration(field("from_duration"), field("from_session"), s.FromDuration, s.FromSession)
	errs = append(errs, durErrs...)
	toDuration, toSession, durErrs := parseDuration(field("to_duration"), field("to_session"), s.ToDuration, s.ToSession)
	errs = append(errs, durErrs...)

	if fromOK && toOK && clock.SameDay(from, to) && s.ToDuration != "" && s.ToDuration != s.FromDuration {
		errs = append(errs, validator.ValidationError{
			Field:   field("to_duration"),
			Message: "to_duration must equal from_duration for a single-day leave",
		})
	}
	if fromOK && toOK && !clock.SameDay(from, to) {
		if fromDuration == DurationHalf && fromSession != nil && *fromSession == SessionForenoon {
			errs = append(errs, validator.ValidationError{
				Field:   field("from_session"),
				Message: "a multi-day leave can only start with an afternoon half day",
			})
		}
		if toDuration == DurationHalf && toSession != nil && *toSession == SessionAfternoon {
			errs = append(errs, validator.ValidationError{
				Field:   field("to_session"),
				Message: "a multi-day leave can only end with a forenoon half day",
			})
		}
	}

	if validator.IsEmpty(s.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   field("reason"),
			Message: "reason is required",
		})
	}

	if s.ChargeGivenTo != nil && *s.ChargeGivenTo == employeeID && employeeID != "" {
		errs = append(errs, validator.ValidationError{
			Field:   field("charge_given_to"),
			Message: ErrChargeHolderIsSelf.Error(),
		})
	}

	switch LeaveType(s.LeaveType) {
	case TypeMedical:
		if s.MedicalCertificateID == nil || validator.IsEmpty(*s.MedicalCertificateID) {
			errs = append(errs, validator.ValidationError{
				Field:   field("medical_certificate_id"),
				Message: ErrCertificateRequired.Error(),
			})
		}
	case TypeCompensatory:
		if s.CompensatoryEntryID == nil || validator.IsEmpty(*s.CompensatoryEntryID) {
			errs = append(errs, validator.ValidationError{
				Field:   field("compensatory_entry_id"),
				Message: ErrCompensatoryRequired.Error(),
			})
		}
	}

	if len(errs) == 0 {
		if clock.SameDay(from, to) {
			toDuration, toSession = fromDuration, fromSession
		}
		s.FullDay = FullDay{
			From:         from,
			To:           to,
			FromDuration: fromDuration,
			FromSession:  fromSession,
			ToDuration:   toDuration,
			ToSession:    toSession,
		}
	}
	return errs
}

func parseDuration(durationField, sessionField, duration string, session *string) (Duration, *Session, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	d := Duration(duration)
	if d == "" {
		d = DurationFull
	}
	if d != DurationFull && d != DurationHalf {
		errs = append(errs, validator.ValidationError{
			Field:   durationField,
			Message: durationField + " must be one of: full, half",
		})
		return d, nil, errs
	}
	if d == DurationFull {
		return d, nil, nil
	}
	if session == nil || !validator.IsInSlice(*session, []string{string(SessionForenoon), string(SessionAfternoon)}) {
		errs = append(errs, validator.ValidationError{
			Field:   sessionField,
			Message: sessionField + " must be one of: forenoon, afternoon",
		})
		return d, nil, errs
	}
	s := Session(*session)
	return d, &s, nil
}

// ========================================
// DECISION DTOs
// ========================================

type DecideLeaveRequest struct {
	LeaveID       string   `json:"-"`
	Stage         string   `json:"stage"`    // hod, ceo, admin
	Decision      string   `json:"decision"` // Approved, Rejected, Acknowledged
	Reason        string   `json:"reason"`
	RejectedDates []string `json:"rejected_dates,omitempty"`

	// Parsed by Validate
	ParsedRejectedDates []time.Time `json:"-"`
}

func (r *DecideLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := approval.LeaveChain.Index(r.Stage); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "stage",
			Message: "stage must be one of: hod, ceo, admin",
		})
	}
	if !validator.IsInSlice(r.Decision, []string{string(approval.Approved), string(approval.Rejected), string(approval.Acknowledged)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: Approved, Rejected, Acknowledged",
		})
	}
	for _, ds := range r.RejectedDates {
		d, ok := validator.IsValidDate(ds)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "rejected_dates",
				Message: "rejected_dates must be in YYYY-MM-DD format",
			})
			break
		}
		r.ParsedRejectedDates = append(r.ParsedRejectedDates, d)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UnlockLeaveRequest struct {
	LeaveID string `json:"-"`
	Stage   string `json:"stage"`
	Reason  string `json:"reason"`
}

func (r *UnlockLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := approval.LeaveChain.Index(r.Stage); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "stage",
			Message: "stage must be one of: hod, ceo, admin",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required to unlock a request",
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

type LeaveFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	LeaveType    *string `json:"leave_type,omitempty"`
	PendingStage *string `json:"pending_stage,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *LeaveFilter) Validate() error {
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
	if f.LeaveType != nil && !LeaveType(*f.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "unknown leave_type"})
	}
	if f.PendingStage != nil {
		if _, ok := approval.LeaveChain.Index(*f.PendingStage); !ok {
			errs = append(errs, validator.ValidationError{Field: "pending_stage", Message: "pending_stage must be one of: hod, ceo, admin"})
		}
	}
	if f.StartDate != nil && *f.StartDate != "" {
		if d, ok := validator.IsValidDate(*f.StartDate); ok {
			f.From = &d
		} else {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if d, ok := validator.IsValidDate(*f.EndDate); ok {
			f.To = &d
		} else {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveResponse struct {
	ID                   string                    `json:"id"`
	CompositeLeaveID     string                    `json:"composite_leave_id"`
	EmployeeID           string                    `json:"employee_id"`
	EmployeeName         *string                   `json:"employee_name,omitempty"`
	LeaveType            string                    `json:"leave_type"`
	From                 string                    `json:"from"`
	To                   string                    `json:"to"`
	FromDuration         string                    `json:"from_duration"`
	FromSession          *string                   `json:"from_session,omitempty"`
	ToDuration           string                    `json:"to_duration"`
	ToSession            *string                   `json:"to_session,omitempty"`
	Days                 string                    `json:"days"`
	Reason               string                    `json:"reason"`
	ChargeGivenTo        *string                   `json:"charge_given_to,omitempty"`
	MedicalCertificateID *string                   `json:"medical_certificate_id,omitempty"`
	CompensatoryEntryID  *string                   `json:"compensatory_entry_id,omitempty"`
	Status               map[string]approval.Value `json:"status"`
	ApprovedDates        []string                  `json:"approved_dates"`
	RejectedDates        []string                  `json:"rejected_dates"`
	History              approval.History          `json:"status_history"`
	CreatedAt            string                    `json:"created_at"`
	UpdatedAt            string                    `json:"updated_at"`
}

type ListLeaveResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Leaves     []LeaveResponse `json:"leaves"`
}

func (l Leave) ToResponse() LeaveResponse {
	resp := LeaveResponse{
		ID:                   l.ID,
		CompositeLeaveID:     l.CompositeLeaveID,
		EmployeeID:           l.EmployeeID,
		EmployeeName:         l.EmployeeName,
		LeaveType:            string(l.LeaveType),
		From:                 l.FullDay.From.Format(clock.DateLayout),
		To:                   l.FullDay.To.Format(clock.DateLayout),
		FromDuration:         string(l.FullDay.FromDuration),
		ToDuration:           string(l.FullDay.ToDuration),
		Days:                 l.Days.String(),
		Reason:               l.Reason,
		ChargeGivenTo:        l.ChargeGivenTo,
		MedicalCertificateID: l.MedicalCertificateID,
		CompensatoryEntryID:  l.CompensatoryEntryID,
		Status:               approval.LeaveChain.ToMap(l.Status),
		ApprovedDates:        formatDates(l.ApprovedDates),
		RejectedDates:        formatDates(l.RejectedDates),
		History:              l.History,
		CreatedAt:            l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            l.UpdatedAt.Format(time.RFC3339),
	}
	if l.FullDay.FromSession != nil {
		s := string(*l.FullDay.FromSession)
		resp.FromSession = &s
	}
	if l.FullDay.ToSession != nil {
		s := string(*l.FullDay.ToSession)
		resp.ToSession = &s
	}
	if resp.History == nil {
		resp.History = approval.History{}
	}
	return resp
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(clock.DateLayout))
	}
	return out
}

// CertificateResponse identifies an uploaded medical certificate. The ID is
// passed back as medical_certificate_id when submitting a Medical leave.
type CertificateResponse struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
