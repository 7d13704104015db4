package postgres

import (
	"time"

	"github.com/google/uuid"
)

// PaymentModel mirrors the payments table. gateway_order_id carries a
// unique constraint; the upsert path depends on it.
type PaymentModel struct {
	ID               uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID *string
	Amount           float64
	Currency         string
	Status           string
	Method           string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	Signature        *string
	DemoMode         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

type CustomerModel struct {
	ID        int64
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	Pincode   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BookingCaseModel struct {
	ID             int64
	CaseRef        uuid.UUID
	CustomerID     int64
	ServiceTypeID  int64
	GatewayOrderID *string
	ScheduledAt    *time.Time
	Amount         float64
	PaymentStatus  string
	AgentID        *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
