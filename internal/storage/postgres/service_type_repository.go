package postgres

import (
	"context"
	"fmt"

	"github.com/petofy/petcare-payments/internal/domain"
)

type ServiceTypeRepository struct {
	q Executor
}

func NewServiceTypeRepository(db *DB) *ServiceTypeRepository {
	return &ServiceTypeRepository{q: db.Pool}
}

// FindOrCreate upserts a service type reference row by name. The no-op
// DO UPDATE lets RETURNING yield the id on both paths.
func (r *ServiceTypeRepository) FindOrCreate(ctx context.Context, name string) (*domain.ServiceType, error) {
	query := `
		INSERT INTO service_types (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`

	var st domain.ServiceType
	err := r.q.QueryRow(ctx, query, name).Scan(&st.ID, &st.Name)
	if err != nil {
		if IsContention(err) {
			return nil, domain.NewContentionError(err)
		}
		return nil, fmt.Errorf("failed to upsert service type: %w", err)
	}
	return &st, nil
}
