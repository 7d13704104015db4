package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/service"
)

// TransactionCoordinator manages transactions across multiple repositories
type TransactionCoordinator struct {
	pool *pgxpool.Pool
}

func NewTransactionCoordinator(db *DB) *TransactionCoordinator {
	return &TransactionCoordinator{
		pool: db.Pool,
	}
}

var _ service.UnitOfWork = (*TransactionCoordinator)(nil)

// WithTransaction executes fn within a single database transaction.
// The store instances handed to fn all share that transaction, so the
// projector's customer/case/payment writes commit or roll back together.
func (tc *TransactionCoordinator) WithTransaction(
	ctx context.Context,
	fn func(ctx context.Context, stores service.Stores) error,
) error {
	tx, err := tc.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stores := service.Stores{
		Payments:     &PaymentRepository{q: tx},
		Customers:    &CustomerRepository{q: tx},
		ServiceTypes: &ServiceTypeRepository{q: tx},
		Bookings:     &BookingRepository{q: tx},
	}

	if err := fn(ctx, stores); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// Serialization failures often surface only at commit.
		if IsContention(err) {
			return domain.NewContentionError(err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
