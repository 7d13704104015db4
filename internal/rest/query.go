package rest

import (
	"net/http"
	"time"
)

type PaymentStatusResponse struct {
	OrderID       string     `json:"order_id"`
	PaymentID     string     `json:"payment_id,omitempty"`
	PaymentStatus string     `json:"payment_status"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Method        string     `json:"method"`
	DemoMode      bool       `json:"demo_mode"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func (h *PaymentHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderID")
	if orderID == "" {
		respondWithJSON(w, http.StatusBadRequest, &APIError{
			Code:    "MISSING_PARAMETER",
			Message: "orderID is required",
		})
		return
	}

	record, err := h.query.GetByOrderID(r.Context(), orderID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	paymentID := ""
	if record.GatewayPaymentID != nil {
		paymentID = *record.GatewayPaymentID
	}

	respondWithJSON(w, http.StatusOK, PaymentStatusResponse{
		OrderID:       record.GatewayOrderID,
		PaymentID:     paymentID,
		PaymentStatus: string(record.Status),
		Amount:        record.Amount,
		Currency:      record.Currency,
		Method:        string(record.Method),
		DemoMode:      record.DemoMode,
		CompletedAt:   record.CompletedAt,
	})
}
