package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-routing/internal/api/http/handlers"
	"github.com/spec-kit/ticket-routing/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Teams          *handlers.TeamsHandler
	Customers      *handlers.CustomersHandler
	Activities     *handlers.ActivitiesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Reads are public; mutations to
// teams, ticket details and reassignments require an agent token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/auth/login", cfg.Auth.Login)

	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id<int>", cfg.Tickets.GetTicket)
	api.Get("/tickets/:id<int>/detail", cfg.Tickets.GetDetail)
	api.Get("/tickets/:number/activities", cfg.Activities.ListActivities)

	api.Get("/teams", cfg.Teams.ListTeams)
	api.Get("/teams/:id<int>", cfg.Teams.GetTeam)

	api.Get("/customers", cfg.Customers.ListCustomers)
	api.Get("/customers/:id<int>", cfg.Customers.GetCustomer)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/register", cfg.Auth.Register)

	protected.Put("/tickets/:id<int>", cfg.Tickets.UpdateTicket)
	protected.Delete("/tickets/:id<int>", cfg.Tickets.DeleteTicket)
	protected.Put("/tickets/:id<int>/detail", cfg.Tickets.UpsertDetail)
	protected.Delete("/tickets/:id<int>/detail", cfg.Tickets.DeleteDetail)
	protected.Post("/tickets/:number/reassign", cfg.Activities.Reassign)

	protected.Post("/teams", cfg.Teams.CreateTeam)
	protected.Put("/teams/:id<int>", cfg.Teams.UpdateTeam)
	protected.Delete("/teams/:id<int>", cfg.Teams.DeleteTeam)

	protected.Post("/customers", cfg.Customers.CreateCustomer)
	protected.Put("/customers/:id<int>", cfg.Customers.UpdateCustomer)
	protected.Delete("/customers/:id<int>", cfg.Customers.DeleteCustomer)
}
