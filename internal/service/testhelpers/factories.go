package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/petofy/petcare-payments/internal/domain"
)

// PaymentStore is the subset of the payment repository the factories need.
type PaymentStore interface {
	Upsert(ctx context.Context, p *domain.PaymentRecord) error
}

// CreatePendingPayment persists a pending record for a synthetic order.
func CreatePendingPayment(t *testing.T, ctx context.Context, store PaymentStore, amount float64) *domain.PaymentRecord {
	t.Helper()

	record, err := domain.NewPaymentRecord("order_"+uuid.New().String(), amount, "INR")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, record))

	return record
}

// CreateCapturedPayment persists a record already reconciled as paid.
func CreateCapturedPayment(t *testing.T, ctx context.Context, store PaymentStore, amount float64) *domain.PaymentRecord {
	t.Helper()

	record, err := domain.NewPaymentRecord("order_"+uuid.New().String(), amount, "INR")
	require.NoError(t, err)

	err = record.Capture("pay_"+uuid.New().String(), "sig_factory", domain.MethodUPI, amount, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, record))

	return record
}

// DefaultCustomerFields returns a unique, fully populated checkout snapshot.
func DefaultCustomerFields() domain.CustomerFields {
	suffix := uuid.New().String()[:8]
	return domain.CustomerFields{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha+" + suffix + "@example.com",
		Phone:     "98765" + suffix[:5],
		City:      "Pune",
	}
}
