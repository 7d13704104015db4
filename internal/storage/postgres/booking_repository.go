package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/petofy/petcare-payments/internal/domain"
)

type BookingRepository struct {
	q Executor
}

func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{q: db.Pool}
}

const bookingColumns = `
	id, case_ref, customer_id, service_type_id, gateway_order_id,
	scheduled_at, amount, payment_status, agent_id, created_at, updated_at`

func (r *BookingRepository) FindByRef(ctx context.Context, caseRef string) (*domain.BookingCase, error) {
	query := `SELECT` + bookingColumns + `
		FROM booking_cases WHERE case_ref = $1`

	row := r.q.QueryRow(ctx, query, caseRef)
	return scanBooking(row, caseRef)
}

// FindByOrderID returns the case tied to a gateway order. A pending case
// outranks a paid one so a stray duplicate never shadows the case still
// waiting for its payment.
func (r *BookingRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.BookingCase, error) {
	query := `SELECT` + bookingColumns + `
		FROM booking_cases
		WHERE gateway_order_id = $1
		ORDER BY (payment_status = 'PENDING') DESC, created_at DESC
		LIMIT 1`

	row := r.q.QueryRow(ctx, query, orderID)
	return scanBooking(row, orderID)
}

// FindLatestMatch returns the most recent case for a customer matching
// service type and scheduled date.
func (r *BookingRepository) FindLatestMatch(ctx context.Context, customerID, serviceTypeID int64, scheduledAt time.Time) (*domain.BookingCase, error) {
	query := `SELECT` + bookingColumns + `
		FROM booking_cases
		WHERE customer_id = $1
		  AND service_type_id = $2
		  AND scheduled_at::date = $3::date
		ORDER BY created_at DESC LIMIT 1`

	row := r.q.QueryRow(ctx, query, customerID, serviceTypeID, scheduledAt)
	return scanBooking(row, fmt.Sprintf("customer %d", customerID))
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.BookingCase) error {
	query := `
		INSERT INTO booking_cases (
			case_ref, customer_id, service_type_id, gateway_order_id,
			scheduled_at, amount, payment_status, agent_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	m := toBookingModel(b)
	err := r.q.QueryRow(ctx, query,
		m.CaseRef, m.CustomerID, m.ServiceTypeID, m.GatewayOrderID,
		m.ScheduledAt, m.Amount, m.PaymentStatus, m.AgentID,
		m.CreatedAt, m.UpdatedAt,
	).Scan(&b.ID)

	if err != nil {
		if IsContention(err) {
			return domain.NewContentionError(err)
		}
		return fmt.Errorf("failed to create booking case: %w", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.BookingCase) error {
	query := `
		UPDATE booking_cases
		SET customer_id = $1, service_type_id = $2, gateway_order_id = $3,
			scheduled_at = $4, amount = $5, payment_status = $6, agent_id = $7,
			updated_at = $8
		WHERE id = $9
	`

	m := toBookingModel(b)
	result, err := r.q.Exec(ctx, query,
		m.CustomerID, m.ServiceTypeID, m.GatewayOrderID,
		m.ScheduledAt, m.Amount, m.PaymentStatus, m.AgentID,
		m.UpdatedAt, m.ID,
	)

	if err != nil {
		if IsContention(err) {
			return domain.NewContentionError(err)
		}
		return fmt.Errorf("failed to update booking case: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("booking case", fmt.Sprintf("%d", b.ID))
	}
	return nil
}

func scanBooking(row pgx.Row, key string) (*domain.BookingCase, error) {
	var m BookingCaseModel
	err := row.Scan(
		&m.ID, &m.CaseRef, &m.CustomerID, &m.ServiceTypeID, &m.GatewayOrderID,
		&m.ScheduledAt, &m.Amount, &m.PaymentStatus, &m.AgentID,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("booking case", key)
		}
		return nil, fmt.Errorf("failed to scan booking case: %w", err)
	}
	return toBookingDomain(m), nil
}
