package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/petofy/petcare-payments/internal/config"
	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/gateway"
)

// demoOrderPrefix can never collide with real gateway order ids.
const demoOrderPrefix = "order_demo_"

// OrderIssuer creates a payment intent with the gateway and records the
// local pending payment row. Without usable credentials, or when the
// gateway call fails, it substitutes a local demo order so downstream
// flows keep working in disconnected environments.
type OrderIssuer struct {
	payments     PaymentStore
	customers    CustomerStore
	serviceTypes ServiceTypeStore
	bookings     BookingStore
	gateway      gateway.Client
	cfg          config.GatewayConfig
	logger       *slog.Logger
}

func NewOrderIssuer(
	payments PaymentStore,
	customers CustomerStore,
	serviceTypes ServiceTypeStore,
	bookings BookingStore,
	gw gateway.Client,
	cfg config.GatewayConfig,
	logger *slog.Logger,
) *OrderIssuer {
	return &OrderIssuer{
		payments:     payments,
		customers:    customers,
		serviceTypes: serviceTypes,
		bookings:     bookings,
		gateway:      gw,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *OrderIssuer) IssueOrder(ctx context.Context, cmd IssueOrderCommand) (*OrderReceipt, error) {
	if cmd.Amount <= 0 || math.IsNaN(cmd.Amount) || math.IsInf(cmd.Amount, 0) {
		return nil, domain.NewInvalidAmountError(cmd.Amount)
	}

	currency := strings.ToUpper(cmd.Currency)
	if currency == "" {
		currency = "INR"
	}

	amountMinor := int64(math.Round(cmd.Amount * float64(s.cfg.MinorUnitFactor)))

	orderID, demoMode := s.createGatewayOrder(ctx, amountMinor, currency, cmd.Notes)

	record, err := domain.NewPaymentRecord(orderID, cmd.Amount, currency)
	if err != nil {
		return nil, err
	}
	record.DemoMode = demoMode
	record.CustomerName = strings.TrimSpace(cmd.Customer.FirstName + " " + cmd.Customer.LastName)
	record.CustomerEmail = cmd.Customer.Email
	record.CustomerPhone = cmd.Customer.Phone

	if err := s.payments.Upsert(ctx, record); err != nil {
		return nil, err
	}

	// Side records are best effort: a failed customer or booking write
	// must never fail order issuance.
	s.upsertCustomerAndBooking(ctx, cmd, orderID)

	return &OrderReceipt{
		OrderID:     orderID,
		AmountMinor: amountMinor,
		Currency:    currency,
		DemoMode:    demoMode,
	}, nil
}

// createGatewayOrder returns (orderID, demoMode). A gateway failure is a
// permanent substitution for this call, not a retry.
func (s *OrderIssuer) createGatewayOrder(ctx context.Context, amountMinor int64, currency string, notes map[string]string) (string, bool) {
	if s.cfg.DemoMode() {
		s.logger.Warn("gateway credentials absent, issuing demo order")
		return demoOrderPrefix + uuid.New().String(), true
	}

	order, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  "rcpt_" + uuid.New().String(),
		Notes:    notes,
	})
	if err != nil {
		s.logger.Error("gateway order creation failed, falling back to demo order", "error", err)
		return demoOrderPrefix + uuid.New().String(), true
	}

	return order.ID, false
}

func (s *OrderIssuer) upsertCustomerAndBooking(ctx context.Context, cmd IssueOrderCommand, orderID string) {
	var customerID int64

	if !cmd.Customer.IsEmpty() {
		customer, err := upsertCustomer(ctx, s.customers, cmd.Customer)
		if err != nil {
			s.logger.Warn("customer upsert failed during order issuance",
				"order_id", orderID,
				"error", err,
			)
		} else {
			customerID = customer.ID
		}
	}

	if cmd.ServiceType == "" || customerID == 0 {
		return
	}

	st, err := s.serviceTypes.FindOrCreate(ctx, cmd.ServiceType)
	if err != nil {
		s.logger.Warn("service type upsert failed during order issuance",
			"order_id", orderID,
			"error", err,
		)
		return
	}

	booking := domain.NewBookingCase(customerID, st.ID, orderID, cmd.ScheduledAt, cmd.Amount)
	if err := s.bookings.Create(ctx, booking); err != nil {
		s.logger.Warn("pending booking creation failed during order issuance",
			"order_id", orderID,
			"error", err,
		)
	}
}

// upsertCustomer resolves an identity by email first, then phone, merging
// non-empty incoming fields; it creates a row when neither matches.
func upsertCustomer(ctx context.Context, customers CustomerStore, f domain.CustomerFields) (*domain.CustomerIdentity, error) {
	existing, err := findCustomer(ctx, customers, f)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		customer := domain.NewCustomerIdentity(f)
		if err := customers.Create(ctx, customer); err != nil {
			return nil, err
		}
		return customer, nil
	}

	if existing.Merge(f) {
		if err := customers.Update(ctx, existing); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func findCustomer(ctx context.Context, customers CustomerStore, f domain.CustomerFields) (*domain.CustomerIdentity, error) {
	if f.Email != "" {
		c, err := customers.FindByEmail(ctx, f.Email)
		if err == nil {
			return c, nil
		}
		if !domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, err
		}
	}

	if f.Phone != "" {
		c, err := customers.FindByPhone(ctx, f.Phone)
		if err == nil {
			return c, nil
		}
		if !domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, err
		}
	}

	return nil, nil
}
