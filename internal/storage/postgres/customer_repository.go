package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/petofy/petcare-payments/internal/domain"
)

type CustomerRepository struct {
	q Executor
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{q: db.Pool}
}

const customerColumns = `
	id, first_name, last_name, email, phone, address, city, state, pincode,
	created_at, updated_at`

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.CustomerIdentity, error) {
	query := `SELECT` + customerColumns + `
		FROM customers WHERE email = $1
		ORDER BY created_at ASC LIMIT 1`

	row := r.q.QueryRow(ctx, query, email)
	return scanCustomer(row, email)
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.CustomerIdentity, error) {
	query := `SELECT` + customerColumns + `
		FROM customers WHERE phone = $1
		ORDER BY created_at ASC LIMIT 1`

	row := r.q.QueryRow(ctx, query, phone)
	return scanCustomer(row, phone)
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.CustomerIdentity) error {
	query := `
		INSERT INTO customers (
			first_name, last_name, email, phone, address, city, state, pincode,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	m := toCustomerModel(c)
	err := r.q.QueryRow(ctx, query,
		m.FirstName, m.LastName, m.Email, m.Phone,
		m.Address, m.City, m.State, m.Pincode,
		m.CreatedAt, m.UpdatedAt,
	).Scan(&c.ID)

	if err != nil {
		if IsContention(err) {
			return domain.NewContentionError(err)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.CustomerIdentity) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			address = $5, city = $6, state = $7, pincode = $8, updated_at = $9
		WHERE id = $10
	`

	m := toCustomerModel(c)
	result, err := r.q.Exec(ctx, query,
		m.FirstName, m.LastName, m.Email, m.Phone,
		m.Address, m.City, m.State, m.Pincode,
		m.UpdatedAt, m.ID,
	)

	if err != nil {
		if IsContention(err) {
			return domain.NewContentionError(err)
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("customer", fmt.Sprintf("%d", c.ID))
	}
	return nil
}

func scanCustomer(row pgx.Row, key string) (*domain.CustomerIdentity, error) {
	var m CustomerModel
	err := row.Scan(
		&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone,
		&m.Address, &m.City, &m.State, &m.Pincode,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("customer", key)
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return toCustomerDomain(m), nil
}
