package service

import (
	"context"

	"github.com/petofy/petcare-payments/internal/domain"
)

// StatusQuery serves read-only lookups of payment records.
type StatusQuery struct {
	payments PaymentStore
}

func NewStatusQuery(payments PaymentStore) *StatusQuery {
	return &StatusQuery{payments: payments}
}

func (s *StatusQuery) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order id is required")
	}
	return s.payments.FindByOrderID(ctx, orderID)
}
