package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Reconcile(w http.ResponseWriter, r *http.Request)
	IngestPunches(w http.ResponseWriter, r *http.Request)
	SubmitLateArrivalReason(w http.ResponseWriter, r *http.Request)
	DecideLateArrival(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Reconcile implements AttendanceHandler. Per-employee failures are part of
// the report; only a failure of the whole run is an error response.
func (h *attendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req attendance.ReconcileRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reconcile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	report, err := h.attendanceService.Reconcile(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance reconciled", report)
}

// IngestPunches implements AttendanceHandler.
func (h *attendanceHandlerImpl) IngestPunches(w http.ResponseWriter, r *http.Request) {
	var req attendance.IngestPunchesRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("IngestPunches decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	stored, err := h.attendanceService.IngestPunches(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punches stored", map[string]int{"stored": stored})
}

// SubmitLateArrivalReason implements AttendanceHandler.
func (h *attendanceHandlerImpl) SubmitLateArrivalReason(w http.ResponseWriter, r *http.Request) {
	var req attendance.LateArrivalReasonRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SubmitLateArrivalReason decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AttendanceID = chi.URLParam(r, "id")

	result, err := h.attendanceService.SubmitLateArrivalReason(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Late arrival reason submitted", result)
}

// DecideLateArrival implements AttendanceHandler.
func (h *attendanceHandlerImpl) DecideLateArrival(w http.ResponseWriter, r *http.Request) {
	var req attendance.LateArrivalDecisionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("DecideLateArrival decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AttendanceID = chi.URLParam(r, "id")

	result, err := h.attendanceService.DecideLateArrival(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Late arrival decision recorded", result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListAttendance(r.Context(), attendanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetMyAttendance(r.Context(), attendanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func attendanceFilterFromQuery(r *http.Request) attendance.AttendanceFilter {
	return attendance.AttendanceFilter{
		EmployeeID:   getStringQueryParam(r, "employee_id"),
		DepartmentID: getStringQueryParam(r, "department_id"),
		StartDate:    getStringQueryParam(r, "start_date"),
		EndDate:      getStringQueryParam(r, "end_date"),
		LAPending:    getBoolQueryParam(r, "la_pending", false),
		Page:         getIntQueryParam(r, "page", 1),
		Limit:        getIntQueryParam(r, "limit", 20),
	}
}
