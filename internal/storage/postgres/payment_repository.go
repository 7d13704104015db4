package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/petofy/petcare-payments/internal/domain"
)

type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

const paymentColumns = `
	id, gateway_order_id, gateway_payment_id, amount, currency, status, method,
	customer_name, customer_email, customer_phone, signature, demo_mode,
	created_at, updated_at, completed_at`

// FindByOrderID retrieves the record for a gateway order.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE gateway_order_id = $1`

	row := r.q.QueryRow(ctx, query, orderID)
	return scanPayment(row, orderID)
}

// Upsert writes the record atomically, keyed on gateway_order_id. Two
// concurrent reconciliations for the same order collapse onto one row, and
// the SQL-level guards hold the merge invariants even when both raced past
// the initial read: a captured row stays captured, a concrete method is
// never replaced by unknown, identifiers and timestamps are never blanked.
func (r *PaymentRepository) Upsert(ctx context.Context, p *domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (gateway_order_id) DO UPDATE SET
			gateway_payment_id = COALESCE(EXCLUDED.gateway_payment_id, payments.gateway_payment_id),
			amount = CASE WHEN EXCLUDED.amount > 0 THEN EXCLUDED.amount ELSE payments.amount END,
			status = CASE WHEN payments.status = 'CAPTURED' THEN payments.status ELSE EXCLUDED.status END,
			method = CASE
				WHEN EXCLUDED.method IN ('unknown', '') AND payments.method NOT IN ('unknown', '')
					THEN payments.method
				ELSE EXCLUDED.method
			END,
			customer_name = CASE WHEN EXCLUDED.customer_name <> '' THEN EXCLUDED.customer_name ELSE payments.customer_name END,
			customer_email = CASE WHEN EXCLUDED.customer_email <> '' THEN EXCLUDED.customer_email ELSE payments.customer_email END,
			customer_phone = CASE WHEN EXCLUDED.customer_phone <> '' THEN EXCLUDED.customer_phone ELSE payments.customer_phone END,
			signature = COALESCE(EXCLUDED.signature, payments.signature),
			completed_at = COALESCE(payments.completed_at, EXCLUDED.completed_at),
			updated_at = EXCLUDED.updated_at
	`

	m := toPaymentModel(p)
	_, err := r.q.Exec(ctx, query,
		m.ID,
		m.GatewayOrderID,
		m.GatewayPaymentID,
		m.Amount,
		m.Currency,
		m.Status,
		m.Method,
		m.CustomerName,
		m.CustomerEmail,
		m.CustomerPhone,
		m.Signature,
		m.DemoMode,
		m.CreatedAt,
		m.UpdatedAt,
		m.CompletedAt,
	)

	if err != nil {
		if IsContention(err) {
			return domain.NewContentionError(err)
		}
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	return nil
}

func scanPayment(row pgx.Row, orderID string) (*domain.PaymentRecord, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.GatewayOrderID, &m.GatewayPaymentID, &m.Amount, &m.Currency, &m.Status, &m.Method,
		&m.CustomerName, &m.CustomerEmail, &m.CustomerPhone, &m.Signature, &m.DemoMode,
		&m.CreatedAt, &m.UpdatedAt, &m.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("payment", orderID)
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toPaymentDomain(m), nil
}
