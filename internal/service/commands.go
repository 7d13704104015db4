package service

import (
	"time"

	"github.com/petofy/petcare-payments/internal/domain"
)

// IssueOrderCommand is the input to order issuance. Amount is in major
// currency units; the issuer converts to the gateway's minor units.
type IssueOrderCommand struct {
	Amount      float64
	Currency    string
	Notes       map[string]string
	Customer    domain.CustomerFields
	ServiceType string
	ScheduledAt *time.Time
}

// OrderReceipt is what the checkout page needs to open the gateway widget.
type OrderReceipt struct {
	OrderID     string
	AmountMinor int64
	Currency    string
	DemoMode    bool
}

// ReconcileCommand carries a callback or manual-resolve request.
// PaymentID, Signature and Amount are optional; Amount, when present, is
// already in major units.
type ReconcileCommand struct {
	OrderID   string
	PaymentID string
	Signature string
	Amount    *float64
	Method    domain.MethodFields
	Customer  domain.CustomerFields
}

// ReconcileOutcome is the resolved payment state.
type ReconcileOutcome string

const (
	OutcomeSuccess ReconcileOutcome = "success"
	OutcomeFailure ReconcileOutcome = "failure"
)

type ReconcileResult struct {
	Outcome   ReconcileOutcome
	OrderID   string
	PaymentID string
	Amount    float64
	Record    *domain.PaymentRecord
}

// ProjectCommand tells the projector which domain rows to converge.
type ProjectCommand struct {
	CaseRef     string
	ServiceType string
	ScheduledAt *time.Time
	Customer    domain.CustomerFields
}

// Projection identifies the rows a successful payment landed on.
type Projection struct {
	CustomerID    int64
	CaseID        int64
	CaseRef       string
	ServiceTypeID int64
}
