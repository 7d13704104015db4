package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petofy/petcare-payments/internal/config"
	"github.com/petofy/petcare-payments/internal/domain"
)

type projectorFixture struct {
	projector    *Projector
	uow          *MockUnitOfWork
	customers    *MockCustomerStore
	serviceTypes *MockServiceTypeStore
	bookings     *MockBookingStore
}

func newProjectorFixture() *projectorFixture {
	customers := NewMockCustomerStore()
	serviceTypes := NewMockServiceTypeStore()
	bookings := NewMockBookingStore()

	uow := &MockUnitOfWork{Stores: Stores{
		Payments:     NewMockPaymentStore(),
		Customers:    customers,
		ServiceTypes: serviceTypes,
		Bookings:     bookings,
	}}

	projector := NewProjector(uow, config.RetryConfig{
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}, testLogger())

	return &projectorFixture{
		projector:    projector,
		uow:          uow,
		customers:    customers,
		serviceTypes: serviceTypes,
		bookings:     bookings,
	}
}

func capturedRecord(t *testing.T, orderID string, amount float64, email, phone string) *domain.PaymentRecord {
	t.Helper()
	record, err := domain.NewPaymentRecord(orderID, amount, "INR")
	require.NoError(t, err)
	record.CustomerEmail = email
	record.CustomerPhone = phone
	require.NoError(t, record.Capture("pay_1", "sig", domain.MethodUPI, amount, time.Now().UTC()))
	return record
}

func TestProject_RejectsNonCapturedRecord(t *testing.T) {
	f := newProjectorFixture()
	record, _ := domain.NewPaymentRecord("order_1", 500, "INR")

	_, err := f.projector.Project(context.Background(), record, ProjectCommand{})

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeValidation))
	assert.Equal(t, 0, f.uow.Calls)
}

func TestProject_CreatesCustomerAndPaidCase(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()
	record := capturedRecord(t, "order_1", 1200, "asha@example.com", "")

	projection, err := f.projector.Project(ctx, record, ProjectCommand{
		ServiceType: "Grooming",
		Customer:    domain.CustomerFields{FirstName: "Asha"},
	})

	require.NoError(t, err)
	assert.NotZero(t, projection.CustomerID)
	assert.NotZero(t, projection.CaseID)
	assert.NotEmpty(t, projection.CaseRef)

	assert.Equal(t, 1, f.customers.Count())
	require.Equal(t, 1, f.bookings.Count())

	bookingCase, err := f.bookings.FindByRef(ctx, projection.CaseRef)
	require.NoError(t, err)
	assert.Equal(t, domain.CasePaid, bookingCase.PaymentStatus)
	assert.Equal(t, 1200.0, bookingCase.Amount)
	assert.Equal(t, "order_1", bookingCase.GatewayOrderID)
}

func TestProject_MarksPendingBookingPaid(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()

	customer := domain.NewCustomerIdentity(domain.CustomerFields{Email: "asha@example.com"})
	require.NoError(t, f.customers.Create(ctx, customer))

	st, err := f.serviceTypes.FindOrCreate(ctx, "Grooming")
	require.NoError(t, err)

	pending := domain.NewBookingCase(customer.ID, st.ID, "order_1", nil, 1200)
	require.NoError(t, f.bookings.Create(ctx, pending))

	record := capturedRecord(t, "order_1", 1200, "asha@example.com", "")

	projection, err := f.projector.Project(ctx, record, ProjectCommand{})

	require.NoError(t, err)
	assert.Equal(t, pending.ID, projection.CaseID)
	assert.Equal(t, customer.ID, projection.CustomerID)
	assert.Equal(t, st.ID, projection.ServiceTypeID)
	assert.Equal(t, 1, f.bookings.Count())

	updated, err := f.bookings.FindByRef(ctx, pending.CaseRef.String())
	require.NoError(t, err)
	assert.Equal(t, domain.CasePaid, updated.PaymentStatus)
}

func TestProject_IsIdempotentForCases(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()

	customer := domain.NewCustomerIdentity(domain.CustomerFields{Email: "asha@example.com"})
	require.NoError(t, f.customers.Create(ctx, customer))
	st, _ := f.serviceTypes.FindOrCreate(ctx, "Grooming")
	pending := domain.NewBookingCase(customer.ID, st.ID, "order_1", nil, 1200)
	require.NoError(t, f.bookings.Create(ctx, pending))

	record := capturedRecord(t, "order_1", 1200, "asha@example.com", "")

	first, err := f.projector.Project(ctx, record, ProjectCommand{})
	require.NoError(t, err)

	// The second projection carries no case reference and must still land
	// on the case the first one marked paid.
	second, err := f.projector.Project(ctx, record, ProjectCommand{})
	require.NoError(t, err)

	assert.Equal(t, first.CaseID, second.CaseID)
	assert.Equal(t, 1, f.bookings.Count())
	assert.Equal(t, 1, f.customers.Count())
}

func TestProject_ResolvesCaseByExplicitRef(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()

	customer := domain.NewCustomerIdentity(domain.CustomerFields{Phone: "9876543210"})
	require.NoError(t, f.customers.Create(ctx, customer))
	st, _ := f.serviceTypes.FindOrCreate(ctx, "Training")
	target := domain.NewBookingCase(customer.ID, st.ID, "", nil, 0)
	require.NoError(t, f.bookings.Create(ctx, target))

	record := capturedRecord(t, "order_9", 900, "", "9876543210")

	projection, err := f.projector.Project(ctx, record, ProjectCommand{
		CaseRef: target.CaseRef.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, target.ID, projection.CaseID)

	updated, err := f.bookings.FindByRef(ctx, target.CaseRef.String())
	require.NoError(t, err)
	assert.Equal(t, domain.CasePaid, updated.PaymentStatus)
	assert.Equal(t, 900.0, updated.Amount)
	assert.Equal(t, "order_9", updated.GatewayOrderID)
}

func TestProject_FindsLatestMatchByCustomerTypeAndDate(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()

	customer := domain.NewCustomerIdentity(domain.CustomerFields{Email: "asha@example.com"})
	require.NoError(t, f.customers.Create(ctx, customer))
	st, _ := f.serviceTypes.FindOrCreate(ctx, "Grooming")

	scheduled := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	match := domain.NewBookingCase(customer.ID, st.ID, "", &scheduled, 600)
	require.NoError(t, f.bookings.Create(ctx, match))

	record := capturedRecord(t, "order_1", 600, "asha@example.com", "")

	sameDay := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	projection, err := f.projector.Project(ctx, record, ProjectCommand{
		ServiceType: "Grooming",
		ScheduledAt: &sameDay,
	})

	require.NoError(t, err)
	assert.Equal(t, match.ID, projection.CaseID)
	assert.Equal(t, 1, f.bookings.Count())
}

func TestProject_MergesCustomerByPhone(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()

	existing := domain.NewCustomerIdentity(domain.CustomerFields{Phone: "9876543210"})
	require.NoError(t, f.customers.Create(ctx, existing))

	record := capturedRecord(t, "order_1", 400, "asha@example.com", "9876543210")

	// Email lookup misses, phone lookup must find the same person.
	projection, err := f.projector.Project(ctx, record, ProjectCommand{
		Customer: domain.CustomerFields{FirstName: "Asha"},
	})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, projection.CustomerID)
	assert.Equal(t, 1, f.customers.Count())
	assert.Equal(t, "Asha", existing.FirstName)
	assert.Equal(t, "asha@example.com", existing.Email)
}

func TestProject_DefaultsServiceType(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()
	record := capturedRecord(t, "order_1", 100, "asha@example.com", "")

	projection, err := f.projector.Project(ctx, record, ProjectCommand{})

	require.NoError(t, err)

	st, err := f.serviceTypes.FindOrCreate(ctx, domain.DefaultServiceType)
	require.NoError(t, err)
	assert.Equal(t, st.ID, projection.ServiceTypeID)
}

func TestProject_RetriesOnContention(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()
	record := capturedRecord(t, "order_1", 100, "asha@example.com", "")

	attempts := 0
	f.uow.WithTransactionFn = func(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
		attempts++
		if attempts < 3 {
			return domain.NewContentionError(assert.AnError)
		}
		return fn(ctx, f.uow.Stores)
	}

	projection, err := f.projector.Project(ctx, record, ProjectCommand{})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.NotZero(t, projection.CaseID)
}

func TestProject_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()
	record := capturedRecord(t, "order_1", 100, "asha@example.com", "")

	f.uow.WithTransactionFn = func(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
		return domain.NewContentionError(assert.AnError)
	}

	_, err := f.projector.Project(ctx, record, ProjectCommand{})

	require.Error(t, err)
	assert.True(t, domain.IsContention(err))
	assert.Equal(t, 3, f.uow.Calls)
}

func TestProject_DoesNotRetryPermanentErrors(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture()
	record := capturedRecord(t, "order_1", 100, "asha@example.com", "")

	f.uow.WithTransactionFn = func(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
		return domain.NewValidationError("boom")
	}

	_, err := f.projector.Project(ctx, record, ProjectCommand{})

	require.Error(t, err)
	assert.Equal(t, 1, f.uow.Calls)
}
