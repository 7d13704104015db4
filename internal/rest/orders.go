package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/service"
)

type IssueOrderRequest struct {
	Amount      float64           `json:"amount" validate:"required,gt=0"`
	Currency    string            `json:"currency" validate:"omitempty,len=3"`
	ServiceType string            `json:"service_type"`
	ScheduledAt *time.Time        `json:"scheduled_at"`
	Notes       map[string]string `json:"notes"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

type IssueOrderResponse struct {
	OrderID     string  `json:"order_id"`
	AmountMinor int64   `json:"amount"`
	AmountMajor float64 `json:"amount_major"`
	Currency    string  `json:"currency"`
	DemoMode    bool    `json:"demo_mode"`
}

func (h *PaymentHandler) HandleIssueOrder(w http.ResponseWriter, r *http.Request) {
	var req IssueOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, domain.NewValidationError("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, domain.NewValidationError(err.Error()))
		return
	}

	cmd := service.IssueOrderCommand{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Notes:       req.Notes,
		ServiceType: req.ServiceType,
		ScheduledAt: req.ScheduledAt,
		Customer: domain.CustomerFields{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
			City:      req.City,
			State:     req.State,
			Pincode:   req.Pincode,
		},
	}

	receipt, err := h.issuer.IssueOrder(r.Context(), cmd)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, IssueOrderResponse{
		OrderID:     receipt.OrderID,
		AmountMinor: receipt.AmountMinor,
		AmountMajor: req.Amount,
		Currency:    receipt.Currency,
		DemoMode:    receipt.DemoMode,
	})
}
