package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ODHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Unlock(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyODs(w http.ResponseWriter, r *http.Request)
}

type odHandlerImpl struct {
	odService od.ODService
}

func NewODHandler(odService od.ODService) ODHandler {
	return &odHandlerImpl{
		odService: odService,
	}
}

// Submit implements ODHandler.
func (h *odHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req od.SubmitODRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit OD decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.odService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "OD submitted successfully", result)
}

// Decide implements ODHandler.
func (h *odHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	var req od.DecideODRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Decide OD decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ODID = chi.URLParam(r, "id")

	result, err := h.odService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "OD decision recorded", result)
}

// Unlock implements ODHandler.
func (h *odHandlerImpl) Unlock(w http.ResponseWriter, r *http.Request) {
	var req od.UnlockODRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Unlock OD decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ODID = chi.URLParam(r, "id")

	result, err := h.odService.Unlock(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "OD unlocked", result)
}

// Get implements ODHandler.
func (h *odHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.odService.GetOD(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements ODHandler.
func (h *odHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.odService.ListODs(r.Context(), odFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyODs implements ODHandler.
func (h *odHandlerImpl) GetMyODs(w http.ResponseWriter, r *http.Request) {
	result, err := h.odService.GetMyODs(r.Context(), odFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func odFilterFromQuery(r *http.Request) od.ODFilter {
	return od.ODFilter{
		EmployeeID:   getStringQueryParam(r, "employee_id"),
		DepartmentID: getStringQueryParam(r, "department_id"),
		PendingStage: getStringQueryParam(r, "pending_stage"),
		Page:         getIntQueryParam(r, "page", 1),
		Limit:        getIntQueryParam(r, "limit", 20),
	}
}
