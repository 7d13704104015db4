// Package service implements the payment flows: order issuance, callback
// reconciliation, and projection of confirmed payments onto domain rows.
package service

import (
	"context"
	"time"

	"github.com/petofy/petcare-payments/internal/domain"
)

// PaymentStore persists payment records. Upsert must be atomic on the
// gateway order id: two concurrent writes for the same order must collapse
// onto one row.
type PaymentStore interface {
	FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error)
	Upsert(ctx context.Context, p *domain.PaymentRecord) error
}

type CustomerStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.CustomerIdentity, error)
	FindByPhone(ctx context.Context, phone string) (*domain.CustomerIdentity, error)
	Create(ctx context.Context, c *domain.CustomerIdentity) error
	Update(ctx context.Context, c *domain.CustomerIdentity) error
}

type ServiceTypeStore interface {
	FindOrCreate(ctx context.Context, name string) (*domain.ServiceType, error)
}

// BookingStore persists booking cases. FindByOrderID returns the case
// tied to a gateway order, preferring a pending one when several exist;
// re-running a projection must land on the case it already marked paid.
type BookingStore interface {
	FindByRef(ctx context.Context, caseRef string) (*domain.BookingCase, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.BookingCase, error)
	FindLatestMatch(ctx context.Context, customerID, serviceTypeID int64, scheduledAt time.Time) (*domain.BookingCase, error)
	Create(ctx context.Context, b *domain.BookingCase) error
	Update(ctx context.Context, b *domain.BookingCase) error
}

// Stores bundles the repositories a unit of work hands to its callback.
type Stores struct {
	Payments     PaymentStore
	Customers    CustomerStore
	ServiceTypes ServiceTypeStore
	Bookings     BookingStore
}

// UnitOfWork runs fn inside a single storage transaction.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
