package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-routing/internal/api/dto"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/service"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// CustomersHandler manages customer endpoints.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// CreateCustomer POST /api/customers.
func (h *CustomersHandler) CreateCustomer(c *fiber.Ctx) error {
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	customer, err := h.service.CreateCustomer(c.UserContext(), &domain.Customer{
		Email:    req.Email,
		FullName: req.FullName,
		Active:   req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": customerResponse(customer)})
}

// ListCustomers GET /api/customers.
func (h *CustomersHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.service.ListCustomers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, customerResponse(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCustomer GET /api/customers/:id.
func (h *CustomersHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.service.GetCustomer(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// UpdateCustomer PUT /api/customers/:id.
func (h *CustomersHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	customer, err := h.service.UpdateCustomer(c.UserContext(), id, &domain.Customer{
		Email:    req.Email,
		FullName: req.FullName,
		Active:   req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// DeleteCustomer DELETE /api/customers/:id.
func (h *CustomersHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteCustomer(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func customerResponse(customer *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        customer.ID,
		Email:     customer.Email,
		FullName:  customer.FullName,
		Active:    customer.Active,
		CreatedAt: customer.CreatedAt,
	}
}
