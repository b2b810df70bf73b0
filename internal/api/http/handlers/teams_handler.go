package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-routing/internal/api/dto"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/service"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// TeamsHandler manages team endpoints.
type TeamsHandler struct {
	service *service.TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teamService *service.TeamService) *TeamsHandler {
	return &TeamsHandler{service: teamService}
}

// CreateTeam POST /api/teams.
func (h *TeamsHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.CreateTeam(c.UserContext(), &domain.Team{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// ListTeams GET /api/teams.
func (h *TeamsHandler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.service.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTeam GET /api/teams/:id.
func (h *TeamsHandler) GetTeam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	team, err := h.service.GetTeam(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// UpdateTeam PUT /api/teams/:id.
func (h *TeamsHandler) UpdateTeam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.UpdateTeam(c.UserContext(), id, &domain.Team{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// DeleteTeam DELETE /api/teams/:id.
func (h *TeamsHandler) DeleteTeam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTeam(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func teamResponse(team *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		Active:      team.Active,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
}
