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

// TeamService manages candidate teams.
type TeamService struct {
	teams repository.TeamRepository
}

// NewTeamService constructs the service.
func NewTeamService(teams repository.TeamRepository) *TeamService {
	return &TeamService{teams: teams}
}

// CreateTeam registers a team; names must be unique case-insensitively
// because the routing pass resolves scorer suggestions by name.
func (s *TeamService) CreateTeam(ctx context.Context, team *domain.Team) (*domain.Team, error) {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if existing, err := s.teams.GetByNameIgnoreCase(ctx, team.Name); err == nil {
		return nil, apperrors.NewConflict("team name already in use", map[string]any{"team_id": existing.ID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// GetTeam fetches one team.
func (s *TeamService) GetTeam(ctx context.Context, id int64) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// ListTeams returns all teams.
func (s *TeamService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// UpdateTeam applies name/description/active changes.
func (s *TeamService) UpdateTeam(ctx context.Context, id int64, input *domain.Team) (*domain.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	team.Name = name
	team.Description = input.Description
	team.Active = input.Active
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// DeleteTeam removes a team.
func (s *TeamService) DeleteTeam(ctx context.Context, id int64) error {
	if err := s.teams.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("team", map[string]any{"team_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
