package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-routing/internal/api/dto"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/repository"
	"github.com/spec-kit/ticket-routing/internal/service"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Subject:        req.Subject,
		RequesterEmail: req.RequesterEmail,
		RequesterName:  req.RequesterName,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": baseTicketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	views, err := h.service.ListTickets(c.UserContext(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(views))
	for i := range views {
		items = append(items, ticketResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(view)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), id, service.TicketUpdateInput{
		Subject:        req.Subject,
		Status:         req.Status,
		Priority:       req.Priority,
		Category:       req.Category,
		Archived:       req.Archived,
		AssignedTeamID: req.AssignedTeamID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": baseTicketResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetDetail GET /api/tickets/:id/detail.
func (h *TicketsHandler) GetDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.service.GetDetail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// UpsertDetail PUT /api/tickets/:id/detail.
func (h *TicketsHandler) UpsertDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpsertTicketDetailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	detail, err := h.service.UpsertDetail(c.UserContext(), &domain.TicketDetail{
		TicketID:        id,
		Description:     req.Description,
		AISuggestedTeam: req.AISuggestedTeam,
		AIConfidence:    req.AIConfidence,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// DeleteDetail DELETE /api/tickets/:id/detail.
func (h *TicketsHandler) DeleteDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteDetail(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if teamIDStr := c.Query("team_id"); teamIDStr != "" {
		if teamID, err := strconv.ParseInt(teamIDStr, 10, 64); err == nil {
			filter.TeamID = &teamID
		}
	}
	if teamName := c.Query("team"); teamName != "" && !strings.EqualFold(teamName, "All") {
		filter.TeamName = &teamName
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseID(c *fiber.Ctx, key string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func baseTicketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		Subject:        ticket.Subject,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		Category:       ticket.Category,
		Archived:       ticket.Archived,
		AssignedTeamID: ticket.AssignedTeamID,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func ticketResponse(view *service.TicketView) dto.TicketResponse {
	resp := baseTicketResponse(&view.Ticket)
	resp.AssignedTeamName = view.AssignedTeamName
	if view.Requester != nil {
		resp.RequesterName = view.Requester.FullName
		resp.RequesterEmail = view.Requester.Email
	}
	if view.Detail != nil {
		resp.TicketDetail = detailResponsePtr(view.Detail)
	}
	for _, row := range view.TeamConfidences {
		resp.Teams = append(resp.Teams, dto.TeamConfidenceResponse{
			TeamName:   row.TeamName,
			Confidence: row.Confidence,
			RankOrder:  row.RankOrder,
		})
	}
	return resp
}

func detailResponse(detail *domain.TicketDetail) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketID:        detail.TicketID,
		Description:     detail.Description,
		AISuggestedTeam: detail.AISuggestedTeam,
		AIConfidence:    detail.AIConfidence,
	}
}

func detailResponsePtr(detail *domain.TicketDetail) *dto.TicketDetailResponse {
	resp := detailResponse(detail)
	return &resp
}
