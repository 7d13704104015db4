package domain

import (
	"time"

	"github.com/google/uuid"
)

// CasePaymentStatus is the payment state of a booking case.
type CasePaymentStatus string

const (
	CasePending CasePaymentStatus = "PENDING"
	CasePaid    CasePaymentStatus = "PAID"
)

// DefaultServiceType is used when neither the callback nor an earlier
// booking row recorded a concrete service.
const DefaultServiceType = "General"

// ServiceType is a reference row for the kind of service booked
// (grooming, training, vet visit, insurance plan).
type ServiceType struct {
	ID   int64
	Name string
}

// BookingCase is one booked service awaiting or holding payment.
// A case created before checkout starts in CasePending and is tied to the
// gateway order once one is issued; payment-link flows can create a case
// only after the money arrives.
type BookingCase struct {
	ID             int64
	CaseRef        uuid.UUID
	CustomerID     int64
	ServiceTypeID  int64
	GatewayOrderID string
	ScheduledAt    *time.Time
	Amount         float64
	PaymentStatus  CasePaymentStatus
	AgentID        *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewBookingCase creates a pending case.
func NewBookingCase(customerID, serviceTypeID int64, gatewayOrderID string, scheduledAt *time.Time, amount float64) *BookingCase {
	now := time.Now().UTC()
	return &BookingCase{
		CaseRef:        uuid.New(),
		CustomerID:     customerID,
		ServiceTypeID:  serviceTypeID,
		GatewayOrderID: gatewayOrderID,
		ScheduledAt:    scheduledAt,
		Amount:         amount,
		PaymentStatus:  CasePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkPaid transitions the case to paid. The stored amount is preserved
// when the incoming one is absent.
func (b *BookingCase) MarkPaid(amount float64, at time.Time) {
	if amount > 0 {
		b.Amount = amount
	}
	b.PaymentStatus = CasePaid
	b.UpdatedAt = at
}
