package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-routing/internal/api/dto"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/service"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// ActivitiesHandler manages ticket activity endpoints.
type ActivitiesHandler struct {
	service *service.ActivityService
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activityService *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{service: activityService}
}

// ListActivities GET /api/tickets/:number/activities.
func (h *ActivitiesHandler) ListActivities(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Params("number"))
	if number == "" {
		return apperrors.NewValidationError("ticket number is required", nil)
	}
	activities, err := h.service.ListByTicketNumber(c.UserContext(), number)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, activityResponse(&activities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Reassign POST /api/tickets/:number/reassign.
func (h *ActivitiesHandler) Reassign(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Params("number"))
	if number == "" {
		return apperrors.NewValidationError("ticket number is required", nil)
	}
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	activity, err := h.service.RecordReassignment(c.UserContext(), number, service.ReassignInput{
		AIAssignedTeam:    req.AIAssignedTeam,
		HumanAssignedTeam: req.HumanAssignedTeam,
		AISuggestedWrong:  req.AISuggestedWrong,
		TeamReview:        req.TeamReview,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": activityResponse(activity)})
}

func activityResponse(activity *domain.TicketActivity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:                activity.ID,
		TicketID:          activity.TicketID,
		AIAssignedTeam:    activity.AIAssignedTeam,
		HumanAssignedTeam: activity.HumanAssignedTeam,
		AISuggestedWrong:  activity.AISuggestedWrong,
		TeamReview:        activity.TeamReview,
		CreatedAt:         activity.CreatedAt,
	}
}
