package service

import (
	"context"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// Scope is the set of teams an identity may view or edit, derived from
// role and explicit assignment. It is recomputed on every request and must
// never be cached: role and assignment can change between requests.
type Scope struct {
	Role string
	// Nil slices mean "no filter" (admin and staff see everything).
	// Empty non-nil slices mean "nothing".
	EditableTeamIDs []string
	ViewableTeamIDs []string
	AssignedTeams   []*repository.Team
}

// Unrestricted reports whether the scope carries no team filter
func (s *Scope) Unrestricted() bool {
	return s.EditableTeamIDs == nil
}

// CanEditTeam checks entity-level authorization for a team id
func (s *Scope) CanEditTeam(teamID string) bool {
	if s.Unrestricted() {
		return true
	}
	for _, id := range s.EditableTeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// ScopeService resolves per-request scopes and enforces the role gate at
// the start of every mutating operation
type ScopeService interface {
	// Resolve computes the caller's scope from the store. Store errors
	// propagate: an unreachable store must deny, never allow.
	Resolve(ctx context.Context, userID string) (*Scope, error)

	// RequireRole authenticates the caller and enforces role >= minRole.
	// Check order: unauthenticated, suspended, insufficient role. The
	// suspension check runs before any role comparison.
	RequireRole(ctx context.Context, userID, minRole string) (*repository.Profile, string, error)
}

type scopeService struct {
	profileRepo repository.ProfileRepository
	teamRepo    repository.TeamRepository
}

// NewScopeService creates a new scope service
func NewScopeService(profileRepo repository.ProfileRepository, teamRepo repository.TeamRepository) ScopeService {
	return &scopeService{profileRepo: profileRepo, teamRepo: teamRepo}
}

func (s *scopeService) Resolve(ctx context.Context, userID string) (*Scope, error) {
	if userID == "" {
		return viewerScope(), nil
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.IsActive {
		return viewerScope(), nil
	}

	role := types.NormalizeRole(profile.Role)

	if role == types.RoleAdmin || role == types.RoleStaff {
		return &Scope{Role: role}, nil
	}

	// Coach scope: union of direct assignment and legacy membership rows.
	// A nominally-viewer identity with assigned teams gets the same
	// treatment, so a stale role field cannot hide a real assignment.
	assigned, err := s.teamRepo.FindByCoachID(ctx, userID)
	if err != nil {
		return nil, err
	}
	legacyIDs, err := s.teamRepo.FindMembershipTeamIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	teamIDs := make([]string, 0, len(assigned)+len(legacyIDs))
	for _, team := range assigned {
		if !seen[team.ID] {
			seen[team.ID] = true
			teamIDs = append(teamIDs, team.ID)
		}
	}
	for _, id := range legacyIDs {
		if !seen[id] {
			seen[id] = true
			teamIDs = append(teamIDs, id)
		}
	}

	if role == types.RoleViewer && len(teamIDs) == 0 {
		return viewerScope(), nil
	}

	teams := assigned
	if len(teamIDs) > len(assigned) {
		teams, err = s.teamRepo.FindByIDs(ctx, teamIDs)
		if err != nil {
			return nil, err
		}
	}

	return &Scope{
		Role:            role,
		EditableTeamIDs: teamIDs,
		ViewableTeamIDs: teamIDs,
		AssignedTeams:   teams,
	}, nil
}

func viewerScope() *Scope {
	return &Scope{
		Role:            types.RoleViewer,
		EditableTeamIDs: []string{},
		ViewableTeamIDs: []string{},
	}
}

func (s *scopeService) RequireRole(ctx context.Context, userID, minRole string) (*repository.Profile, string, error) {
	if userID == "" {
		return nil, "", ErrUnauthenticated
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if profile == nil {
		return nil, "", ErrUnauthenticated
	}
	if !profile.IsActive {
		return nil, "", ErrSuspended
	}

	role := types.NormalizeRole(profile.Role)
	if !types.HasMinimumRole(role, minRole) {
		return nil, "", ErrForbidden
	}

	return profile, role, nil
}
