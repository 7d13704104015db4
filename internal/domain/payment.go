// Package domain defines the entities tracked by the payments service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the current state of a payment record in its lifecycle
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusCaptured PaymentStatus = "CAPTURED"
	StatusFailed   PaymentStatus = "FAILED"
)

// PaymentRecord tracks one issued gateway order through to completion.
// There is at most one record per GatewayOrderID, and Amount is always in
// major currency units (rupees, not paise).
type PaymentRecord struct {
	ID               uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID *string

	Amount   float64
	Currency string
	Status   PaymentStatus
	Method   PaymentMethod

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	Signature *string
	DemoMode  bool

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// NewPaymentRecord creates a pending record for a freshly issued order.
func NewPaymentRecord(gatewayOrderID string, amount float64, currency string) (*PaymentRecord, error) {
	if amount <= 0 {
		return nil, NewInvalidAmountError(amount)
	}
	if gatewayOrderID == "" {
		return nil, NewValidationError("gateway order id is required")
	}

	now := time.Now().UTC()
	return &PaymentRecord{
		ID:             uuid.New(),
		GatewayOrderID: gatewayOrderID,
		Amount:         amount,
		Currency:       currency,
		Status:         StatusPending,
		Method:         MethodUnknown,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanTransitionTo validates a status transition. Captured is terminal: a
// late failure callback must never downgrade a captured record. A late
// success after a failure is allowed, since callbacks can arrive out of
// order.
func (p *PaymentRecord) CanTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case StatusCaptured:
		return NewInvalidTransitionError(p.Status, target)

	case StatusPending:
		if target == StatusCaptured || target == StatusFailed {
			return nil
		}

	case StatusFailed:
		if target == StatusCaptured {
			return nil
		}
	}
	return NewInvalidTransitionError(p.Status, target)
}

func (p *PaymentRecord) IsTerminal() bool {
	return p.Status == StatusCaptured
}

// Capture marks the record as paid. Method and amount follow the merge
// rules: a concrete method never regresses, a positive stored amount is
// only replaced by a positive new one.
func (p *PaymentRecord) Capture(paymentID, signature string, method PaymentMethod, amount float64, at time.Time) error {
	if err := p.CanTransitionTo(StatusCaptured); err != nil {
		return err
	}

	if paymentID != "" {
		p.GatewayPaymentID = &paymentID
	}
	if signature != "" {
		p.Signature = &signature
	}
	if method.MoreSpecificThan(p.Method) {
		p.Method = method
	}
	if amount > 0 {
		p.Amount = amount
	}

	p.Status = StatusCaptured
	p.CompletedAt = &at
	p.UpdatedAt = at
	return nil
}

// Fail marks the record as failed. No-op error for captured records.
func (p *PaymentRecord) Fail(paymentID string, at time.Time) error {
	if err := p.CanTransitionTo(StatusFailed); err != nil {
		return err
	}

	if paymentID != "" {
		p.GatewayPaymentID = &paymentID
	}
	p.Status = StatusFailed
	p.UpdatedAt = at
	return nil
}
