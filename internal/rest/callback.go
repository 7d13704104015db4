package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/service"
)

type CallbackRequest struct {
	OrderID   string   `json:"order_id" validate:"required"`
	PaymentID string   `json:"payment_id"`
	Signature string   `json:"signature"`
	Amount    *float64 `json:"amount" validate:"omitempty,gt=0"`

	CaseRef     string     `json:"case_ref"`
	ServiceType string     `json:"service_type"`
	ScheduledAt *time.Time `json:"scheduled_at"`

	CardLast4 string `json:"card_last4"`
	UPIHandle string `json:"upi_handle"`
	BankCode  string `json:"bank_code"`
	Wallet    string `json:"wallet"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

type CallbackResponse struct {
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	OrderID       string  `json:"order_id"`
	PaymentID     string  `json:"payment_id,omitempty"`
	Amount        float64 `json:"amount"`
	DemoMode      bool    `json:"demo_mode"`
	CustomerID    int64   `json:"customer_id,omitempty"`
	CaseRef       string  `json:"case_ref,omitempty"`
}

func (h *PaymentHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, domain.NewValidationError("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, domain.NewValidationError(err.Error()))
		return
	}

	h.reconcileAndProject(w, r, req)
}

// HandleResolve re-runs reconciliation for an order, querying the gateway
// for the authoritative outcome. Administrative backstop for callbacks
// that never arrived or failed mid-flight.
func (h *PaymentHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderID")
	if orderID == "" {
		respondWithJSON(w, http.StatusBadRequest, &APIError{
			Code:    "MISSING_PARAMETER",
			Message: "orderID is required",
		})
		return
	}

	h.reconcileAndProject(w, r, CallbackRequest{OrderID: orderID})
}

func (h *PaymentHandler) reconcileAndProject(w http.ResponseWriter, r *http.Request, req CallbackRequest) {
	customer := domain.CustomerFields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	result, err := h.reconciler.Reconcile(r.Context(), service.ReconcileCommand{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Amount:    req.Amount,
		Customer:  customer,
		Method: domain.MethodFields{
			CardLast4: req.CardLast4,
			UPIHandle: req.UPIHandle,
			BankCode:  req.BankCode,
			Wallet:    req.Wallet,
		},
	})
	if err != nil {
		respondWithError(w, err)
		return
	}

	resp := CallbackResponse{
		Status:        string(result.Outcome),
		PaymentStatus: string(result.Record.Status),
		OrderID:       result.OrderID,
		PaymentID:     result.PaymentID,
		Amount:        result.Amount,
		DemoMode:      result.Record.DemoMode,
	}

	if result.Outcome == service.OutcomeSuccess {
		projection, err := h.projector.Project(r.Context(), result.Record, service.ProjectCommand{
			CaseRef:     req.CaseRef,
			ServiceType: req.ServiceType,
			ScheduledAt: req.ScheduledAt,
			Customer:    customer,
		})
		if err != nil {
			// Reconciliation already committed and is idempotent; the
			// sender's redelivery will retry the projection.
			respondWithError(w, err)
			return
		}
		resp.CustomerID = projection.CustomerID
		resp.CaseRef = projection.CaseRef
	}

	respondWithJSON(w, http.StatusOK, resp)
}
