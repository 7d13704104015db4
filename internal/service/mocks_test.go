package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/petofy/petcare-payments/internal/config"
	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/gateway"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		KeyID:           "rzp_test_key",
		KeySecret:       "rzp_test_secret",
		BaseURL:         "http://localhost:9999",
		MinorUnitFactor: 100,
	}
}

// MockPaymentStore
type MockPaymentStore struct {
	records map[string]*domain.PaymentRecord

	FindByOrderIDFn func(ctx context.Context, orderID string) (*domain.PaymentRecord, error)
	UpsertFn        func(ctx context.Context, p *domain.PaymentRecord) error
	UpsertCalls     int
}

func NewMockPaymentStore() *MockPaymentStore {
	return &MockPaymentStore{records: make(map[string]*domain.PaymentRecord)}
}

func (m *MockPaymentStore) FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	if m.FindByOrderIDFn != nil {
		return m.FindByOrderIDFn(ctx, orderID)
	}
	if p, ok := m.records[orderID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.NewNotFoundError("payment", orderID)
}

func (m *MockPaymentStore) Upsert(ctx context.Context, p *domain.PaymentRecord) error {
	m.UpsertCalls++
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, p)
	}
	copied := *p
	m.records[p.GatewayOrderID] = &copied
	return nil
}

// MockCustomerStore
type MockCustomerStore struct {
	customers []*domain.CustomerIdentity
	nextID    int64

	FindByEmailFn func(ctx context.Context, email string) (*domain.CustomerIdentity, error)
	FindByPhoneFn func(ctx context.Context, phone string) (*domain.CustomerIdentity, error)
	CreateFn      func(ctx context.Context, c *domain.CustomerIdentity) error
	UpdateFn      func(ctx context.Context, c *domain.CustomerIdentity) error
}

func NewMockCustomerStore() *MockCustomerStore {
	return &MockCustomerStore{nextID: 1}
}

func (m *MockCustomerStore) FindByEmail(ctx context.Context, email string) (*domain.CustomerIdentity, error) {
	if m.FindByEmailFn != nil {
		return m.FindByEmailFn(ctx, email)
	}
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, domain.NewNotFoundError("customer", email)
}

func (m *MockCustomerStore) FindByPhone(ctx context.Context, phone string) (*domain.CustomerIdentity, error) {
	if m.FindByPhoneFn != nil {
		return m.FindByPhoneFn(ctx, phone)
	}
	for _, c := range m.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, domain.NewNotFoundError("customer", phone)
}

func (m *MockCustomerStore) Create(ctx context.Context, c *domain.CustomerIdentity) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	c.ID = m.nextID
	m.nextID++
	m.customers = append(m.customers, c)
	return nil
}

func (m *MockCustomerStore) Update(ctx context.Context, c *domain.CustomerIdentity) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, c)
	}
	for i, existing := range m.customers {
		if existing.ID == c.ID {
			m.customers[i] = c
			return nil
		}
	}
	return domain.NewNotFoundError("customer", "unknown")
}

func (m *MockCustomerStore) Count() int {
	return len(m.customers)
}

// MockServiceTypeStore
type MockServiceTypeStore struct {
	types  map[string]*domain.ServiceType
	nextID int64

	FindOrCreateFn func(ctx context.Context, name string) (*domain.ServiceType, error)
}

func NewMockServiceTypeStore() *MockServiceTypeStore {
	return &MockServiceTypeStore{types: make(map[string]*domain.ServiceType), nextID: 1}
}

func (m *MockServiceTypeStore) FindOrCreate(ctx context.Context, name string) (*domain.ServiceType, error) {
	if m.FindOrCreateFn != nil {
		return m.FindOrCreateFn(ctx, name)
	}
	if st, ok := m.types[name]; ok {
		return st, nil
	}
	st := &domain.ServiceType{ID: m.nextID, Name: name}
	m.nextID++
	m.types[name] = st
	return st, nil
}

// MockBookingStore
type MockBookingStore struct {
	cases  []*domain.BookingCase
	nextID int64

	FindByRefFn       func(ctx context.Context, caseRef string) (*domain.BookingCase, error)
	FindByOrderIDFn   func(ctx context.Context, orderID string) (*domain.BookingCase, error)
	FindLatestMatchFn func(ctx context.Context, customerID, serviceTypeID int64, scheduledAt time.Time) (*domain.BookingCase, error)
	CreateFn          func(ctx context.Context, b *domain.BookingCase) error
	UpdateFn          func(ctx context.Context, b *domain.BookingCase) error
}

func NewMockBookingStore() *MockBookingStore {
	return &MockBookingStore{nextID: 1}
}

func (m *MockBookingStore) FindByRef(ctx context.Context, caseRef string) (*domain.BookingCase, error) {
	if m.FindByRefFn != nil {
		return m.FindByRefFn(ctx, caseRef)
	}
	for _, b := range m.cases {
		if b.CaseRef.String() == caseRef {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("booking case", caseRef)
}

func (m *MockBookingStore) FindByOrderID(ctx context.Context, orderID string) (*domain.BookingCase, error) {
	if m.FindByOrderIDFn != nil {
		return m.FindByOrderIDFn(ctx, orderID)
	}
	var latest *domain.BookingCase
	for i := len(m.cases) - 1; i >= 0; i-- {
		b := m.cases[i]
		if b.GatewayOrderID != orderID {
			continue
		}
		if b.PaymentStatus == domain.CasePending {
			return b, nil
		}
		if latest == nil {
			latest = b
		}
	}
	if latest != nil {
		return latest, nil
	}
	return nil, domain.NewNotFoundError("booking case", orderID)
}

func (m *MockBookingStore) FindLatestMatch(ctx context.Context, customerID, serviceTypeID int64, scheduledAt time.Time) (*domain.BookingCase, error) {
	if m.FindLatestMatchFn != nil {
		return m.FindLatestMatchFn(ctx, customerID, serviceTypeID, scheduledAt)
	}
	y, mo, d := scheduledAt.Date()
	for i := len(m.cases) - 1; i >= 0; i-- {
		b := m.cases[i]
		if b.CustomerID != customerID || b.ServiceTypeID != serviceTypeID || b.ScheduledAt == nil {
			continue
		}
		by, bm, bd := b.ScheduledAt.Date()
		if by == y && bm == mo && bd == d {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("booking case", "no match")
}

func (m *MockBookingStore) Create(ctx context.Context, b *domain.BookingCase) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	b.ID = m.nextID
	m.nextID++
	m.cases = append(m.cases, b)
	return nil
}

func (m *MockBookingStore) Update(ctx context.Context, b *domain.BookingCase) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, b)
	}
	for i, existing := range m.cases {
		if existing.ID == b.ID {
			m.cases[i] = b
			return nil
		}
	}
	return domain.NewNotFoundError("booking case", "unknown")
}

func (m *MockBookingStore) Count() int {
	return len(m.cases)
}

// MockGatewayClient
type MockGatewayClient struct {
	CreateOrderFn       func(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error)
	FetchPaymentFn      func(ctx context.Context, paymentID string) (*gateway.Payment, error)
	ListOrderPaymentsFn func(ctx context.Context, orderID string) ([]gateway.Payment, error)

	CreateOrderCalls int
	FetchCalls       int
	ListCalls        int
}

func (m *MockGatewayClient) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	m.CreateOrderCalls++
	if m.CreateOrderFn != nil {
		return m.CreateOrderFn(ctx, req)
	}
	return &gateway.Order{ID: "order_live_1", Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
}

func (m *MockGatewayClient) FetchPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	m.FetchCalls++
	if m.FetchPaymentFn != nil {
		return m.FetchPaymentFn(ctx, paymentID)
	}
	return nil, &gateway.GatewayError{Code: "not_found", StatusCode: 404}
}

func (m *MockGatewayClient) ListOrderPayments(ctx context.Context, orderID string) ([]gateway.Payment, error) {
	m.ListCalls++
	if m.ListOrderPaymentsFn != nil {
		return m.ListOrderPaymentsFn(ctx, orderID)
	}
	return nil, nil
}

// MockUnitOfWork runs the transactional callback against the in-memory
// stores directly. There is no rollback; tests that need failure paths
// override WithTransactionFn.
type MockUnitOfWork struct {
	Stores Stores

	WithTransactionFn func(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
	Calls             int
}

func (m *MockUnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	m.Calls++
	if m.WithTransactionFn != nil {
		return m.WithTransactionFn(ctx, fn)
	}
	return fn(ctx, m.Stores)
}
