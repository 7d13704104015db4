package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/petofy/petcare-payments/internal/config"
	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/storage"
)

// Projector propagates a confirmed payment onto the dependent domain
// rows: the customer identity and the booking case. All writes happen in
// one transaction, retried on transient lock contention.
type Projector struct {
	uow         UnitOfWork
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

func NewProjector(uow UnitOfWork, cfg config.RetryConfig, logger *slog.Logger) *Projector {
	return &Projector{
		uow:         uow,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		logger:      logger,
	}
}

func (p *Projector) Project(ctx context.Context, record *domain.PaymentRecord, cmd ProjectCommand) (*Projection, error) {
	if record == nil || record.Status != domain.StatusCaptured {
		return nil, domain.NewValidationError("only captured payments can be projected")
	}

	var projection *Projection

	err := storage.WithRetry(ctx, p.maxAttempts, p.backoff, domain.IsContention, func(ctx context.Context) error {
		return p.uow.WithTransaction(ctx, func(ctx context.Context, stores Stores) error {
			result, err := p.projectTx(ctx, stores, record, cmd)
			if err != nil {
				return err
			}
			projection = result
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return projection, nil
}

func (p *Projector) projectTx(ctx context.Context, stores Stores, record *domain.PaymentRecord, cmd ProjectCommand) (*Projection, error) {
	customer, err := p.resolveCustomer(ctx, stores, record, cmd)
	if err != nil {
		return nil, err
	}

	orderCase := p.findOrderBooking(ctx, stores, record.GatewayOrderID)

	serviceTypeID, err := p.resolveServiceType(ctx, stores, cmd.ServiceType, orderCase)
	if err != nil {
		return nil, err
	}

	bookingCase, err := p.resolveCase(ctx, stores, customer, serviceTypeID, orderCase, record, cmd)
	if err != nil {
		return nil, err
	}

	return &Projection{
		CustomerID:    customer.ID,
		CaseID:        bookingCase.ID,
		CaseRef:       bookingCase.CaseRef.String(),
		ServiceTypeID: serviceTypeID,
	}, nil
}

// resolveCustomer merges the payment's customer snapshot with any fields
// the callback carried, by email first, then phone.
func (p *Projector) resolveCustomer(ctx context.Context, stores Stores, record *domain.PaymentRecord, cmd ProjectCommand) (*domain.CustomerIdentity, error) {
	fields := cmd.Customer
	if fields.Email == "" {
		fields.Email = record.CustomerEmail
	}
	if fields.Phone == "" {
		fields.Phone = record.CustomerPhone
	}

	return upsertCustomer(ctx, stores.Customers, fields)
}

// findOrderBooking returns the case already tied to the gateway order,
// whether still pending or marked paid by an earlier projection.
func (p *Projector) findOrderBooking(ctx context.Context, stores Stores, orderID string) *domain.BookingCase {
	bookingCase, err := stores.Bookings.FindByOrderID(ctx, orderID)
	if err != nil {
		if !domain.IsCode(err, domain.ErrCodeNotFound) {
			p.logger.Warn("order booking lookup failed", "order_id", orderID, "error", err)
		}
		return nil
	}
	return bookingCase
}

// resolveServiceType prefers the explicit label, then the type recorded
// on the case the order is already tied to, then the generic default.
func (p *Projector) resolveServiceType(ctx context.Context, stores Stores, explicit string, orderCase *domain.BookingCase) (int64, error) {
	if explicit != "" {
		st, err := stores.ServiceTypes.FindOrCreate(ctx, explicit)
		if err != nil {
			return 0, err
		}
		return st.ID, nil
	}

	if orderCase != nil {
		return orderCase.ServiceTypeID, nil
	}

	st, err := stores.ServiceTypes.FindOrCreate(ctx, domain.DefaultServiceType)
	if err != nil {
		return 0, err
	}
	return st.ID, nil
}

// resolveCase finds the one case to mark paid: explicit reference first,
// then the case tied to the order, then the latest match on customer,
// service type and date, and finally a case created post-payment
// (payment-link flows with no pre-booking).
func (p *Projector) resolveCase(
	ctx context.Context,
	stores Stores,
	customer *domain.CustomerIdentity,
	serviceTypeID int64,
	orderCase *domain.BookingCase,
	record *domain.PaymentRecord,
	cmd ProjectCommand,
) (*domain.BookingCase, error) {
	now := time.Now().UTC()

	target, err := p.findCase(ctx, stores, customer, serviceTypeID, orderCase, cmd)
	if err != nil {
		return nil, err
	}

	if target == nil {
		target = domain.NewBookingCase(customer.ID, serviceTypeID, record.GatewayOrderID, cmd.ScheduledAt, record.Amount)
		target.MarkPaid(record.Amount, now)
		if err := stores.Bookings.Create(ctx, target); err != nil {
			return nil, err
		}
		return target, nil
	}

	if target.CustomerID == 0 {
		target.CustomerID = customer.ID
	}
	if target.GatewayOrderID == "" {
		target.GatewayOrderID = record.GatewayOrderID
	}
	target.MarkPaid(record.Amount, now)

	if err := stores.Bookings.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (p *Projector) findCase(
	ctx context.Context,
	stores Stores,
	customer *domain.CustomerIdentity,
	serviceTypeID int64,
	orderCase *domain.BookingCase,
	cmd ProjectCommand,
) (*domain.BookingCase, error) {
	if cmd.CaseRef != "" {
		target, err := stores.Bookings.FindByRef(ctx, cmd.CaseRef)
		if err == nil {
			return target, nil
		}
		if !domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, err
		}
	}

	if orderCase != nil {
		return orderCase, nil
	}

	if cmd.ScheduledAt != nil {
		target, err := stores.Bookings.FindLatestMatch(ctx, customer.ID, serviceTypeID, *cmd.ScheduledAt)
		if err == nil {
			return target, nil
		}
		if !domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, err
		}
	}

	return nil, nil
}
