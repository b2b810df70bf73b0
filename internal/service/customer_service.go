package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/repository"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// CustomerService manages ticket requesters.
type CustomerService struct {
	customers repository.CustomerRepository
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// CreateCustomer registers a requester.
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	customer.Email = strings.TrimSpace(customer.Email)
	if customer.Email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	if existing, err := s.customers.GetByEmailIgnoreCase(ctx, customer.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"customer_id": existing.ID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// GetCustomer fetches one requester.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// ListCustomers returns all requesters.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return customers, nil
}

// UpdateCustomer applies profile changes.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, input *domain.Customer) (*domain.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	customer.Email = email
	customer.FullName = input.FullName
	customer.Active = input.Active
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// DeleteCustomer removes a requester.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("customer", map[string]any{"customer_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
