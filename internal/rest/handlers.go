// Package rest exposes the payment flows over HTTP.
package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/service"
)

type OrderIssuer interface {
	IssueOrder(ctx context.Context, cmd service.IssueOrderCommand) (*service.OrderReceipt, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, cmd service.ReconcileCommand) (*service.ReconcileResult, error)
}

type Projector interface {
	Project(ctx context.Context, record *domain.PaymentRecord, cmd service.ProjectCommand) (*service.Projection, error)
}

type StatusQuery interface {
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error)
}

type PaymentHandler struct {
	issuer     OrderIssuer
	reconciler Reconciler
	projector  Projector
	query      StatusQuery
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewPaymentHandler(
	issuer OrderIssuer,
	reconciler Reconciler,
	projector Projector,
	query StatusQuery,
	logger *slog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		issuer:     issuer,
		reconciler: reconciler,
		projector:  projector,
		query:      query,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments/orders", h.HandleIssueOrder)
	mux.HandleFunc("POST /payments/callback", h.HandleCallback)
	mux.HandleFunc("GET /payments/{orderID}/status", h.HandleStatus)
	mux.HandleFunc("POST /payments/{orderID}/resolve", h.HandleResolve)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
}

func (h *PaymentHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
