package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// CustomerRepository manages persistence for requesters.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmailIgnoreCase(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository constructs repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerSelect = `
        SELECT id, email, full_name, active, created_at
        FROM customers`

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (email, full_name, active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		customer.Email,
		customer.FullName,
		customer.Active,
	).Scan(&customer.ID, &customer.CreatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET email=$1, full_name=$2, active=$3 WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		customer.Email,
		customer.FullName,
		customer.Active,
		customer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.fetchSingle(ctx, customerSelect+` WHERE id=$1`, id)
}

func (r *customerRepository) GetByEmailIgnoreCase(ctx context.Context, email string) (*domain.Customer, error) {
	return r.fetchSingle(ctx, customerSelect+` WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *customerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&customer.ID,
		&customer.Email,
		&customer.FullName,
		&customer.Active,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx, customerSelect+` ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Email, &customer.FullName, &customer.Active, &customer.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
