package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PunchMissedHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Unlock(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type punchMissedHandlerImpl struct {
	punchMissedService punchmissed.PunchMissedService
}

func NewPunchMissedHandler(punchMissedService punchmissed.PunchMissedService) PunchMissedHandler {
	return &punchMissedHandlerImpl{
		punchMissedService: punchMissedService,
	}
}

// Submit implements PunchMissedHandler.
func (h *punchMissedHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req punchmissed.SubmitPunchMissedRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit punch missed decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.punchMissedService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch missed request submitted successfully", result)
}

// Decide implements PunchMissedHandler.
func (h *punchMissedHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	var req punchmissed.DecidePunchMissedRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Decide punch missed decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.PunchMissedID = chi.URLParam(r, "id")

	result, err := h.punchMissedService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch missed decision recorded", result)
}

// Unlock implements PunchMissedHandler.
func (h *punchMissedHandlerImpl) Unlock(w http.ResponseWriter, r *http.Request) {
	var req punchmissed.UnlockPunchMissedRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Unlock punch missed decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.PunchMissedID = chi.URLParam(r, "id")

	result, err := h.punchMissedService.Unlock(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch missed request unlocked", result)
}

// Get implements PunchMissedHandler.
func (h *punchMissedHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.punchMissedService.GetPunchMissed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements PunchMissedHandler. Employees only see their own requests.
func (h *punchMissedHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := punchmissed.PunchMissedFilter{
		EmployeeID:   getStringQueryParam(r, "employee_id"),
		DepartmentID: getStringQueryParam(r, "department_id"),
		PendingStage: getStringQueryParam(r, "pending_stage"),
		Page:         getIntQueryParam(r, "page", 1),
		Limit:        getIntQueryParam(r, "limit", 20),
	}

	result, err := h.punchMissedService.ListPunchMissed(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
