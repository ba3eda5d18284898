package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/maallem/internal/domain"
)

const serviceColumns = `id, provider_id, title, description, trade, created_at`

// ServiceRepository implements domain.ServiceRepository using SQLite.
type ServiceRepository struct {
	db *sql.DB
}

// NewServiceRepository creates a new SQLite-backed ServiceRepository.
func NewServiceRepository(db *DB) *ServiceRepository {
	return &ServiceRepository{db: db.SqlDB}
}

func (r *ServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO services (`+serviceColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		id, service.ProviderID, service.Title, service.Description, service.Trade, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, service.ProviderID)
		}
		return fmt.Errorf("insert service: %w", err)
	}

	service.ID = id
	service.CreatedAt = now
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	s := &domain.Service{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id,
	).Scan(&s.ID, &s.ProviderID, &s.Title, &s.Description, &s.Trade, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}
	return s, nil
}

func (r *ServiceRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.Service, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE provider_id = ? ORDER BY created_at, id`, providerID)
	if err != nil {
		return nil, fmt.Errorf("list services by provider: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r *ServiceRepository) ListByTrade(ctx context.Context, trade string) ([]domain.Service, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if trade == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+serviceColumns+` FROM services ORDER BY created_at, id`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+serviceColumns+` FROM services WHERE trade = ? ORDER BY created_at, id`, trade)
	}
	if err != nil {
		return nil, fmt.Errorf("list services by trade: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}

// UpdateDetails never writes provider_id or created_at.
func (r *ServiceRepository) UpdateDetails(ctx context.Context, id, title, description, trade string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE services SET title = ?, description = ?, trade = ? WHERE id = ?`,
		title, description, trade, id,
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the service. Deleting an id that does not exist is not an error.
func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

func scanServices(rows *sql.Rows) ([]domain.Service, error) {
	var services []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.Title, &s.Description, &s.Trade, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
