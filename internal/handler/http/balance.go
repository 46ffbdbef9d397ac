package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type BalanceHandler interface {
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type balanceHandlerImpl struct {
	ledger balance.Ledger
}

func NewBalanceHandler(ledger balance.Ledger) BalanceHandler {
	return &balanceHandlerImpl{
		ledger: ledger,
	}
}

// GetMyBalance implements BalanceHandler.
func (h *balanceHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrUnauthenticated)
		return
	}

	result, err := h.ledger.GetBalance(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetBalance implements BalanceHandler. The route is limited to approvers.
func (h *balanceHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
