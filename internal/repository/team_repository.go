package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// Team Models
// ============================================

// Team represents a club team. A team has at most one assigned coach; a
// coach may be assigned to many teams.
type Team struct {
	ID        string
	Name      string
	Category  string
	Pole      *string
	CoachID   *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Coach     *Profile
}

// TeamMembership is a row in the legacy membership table, mirrored
// best-effort from teams.coach_id for the old portal's read paths.
type TeamMembership struct {
	ID        string
	UserID    string
	TeamID    string
	Role      string
	CreatedAt time.Time
}

// ============================================
// Team Repository Interface
// ============================================

// TeamRepository defines team data operations
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	FindByID(ctx context.Context, id string) (*Team, error)
	FindAll(ctx context.Context) ([]*Team, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Team, error)
	FindByCoachID(ctx context.Context, coachID string) ([]*Team, error)
	Update(ctx context.Context, team *Team) error
	AssignCoach(ctx context.Context, teamID string, coachID *string) error
	ClearCoach(ctx context.Context, coachID string) error
	CountByCoachID(ctx context.Context, coachID string) (int, error)

	// Legacy membership operations
	FindMembershipTeamIDs(ctx context.Context, userID string) ([]string, error)
	ReplaceMemberships(ctx context.Context, userID string, teamIDs []string) error
}

// ============================================
// PostgreSQL Team Repository Implementation
// ============================================

type pgTeamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository creates a new PostgreSQL team repository
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgTeamRepository{pool: pool}
}

func (r *pgTeamRepository) Create(ctx context.Context, team *Team) error {
	query := `
		INSERT INTO teams (name, category, pole, coach_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		team.Name, team.Category, team.Pole, team.CoachID,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*Team, error) {
	query := `
		SELECT id, name, category, pole, coach_id, created_at, updated_at
		FROM teams WHERE id = $1
	`
	team := &Team{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Category, &team.Pole,
		&team.CoachID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *pgTeamRepository) FindAll(ctx context.Context) ([]*Team, error) {
	query := `
		SELECT id, name, category, pole, coach_id, created_at, updated_at
		FROM teams
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTeams(rows)
}

func (r *pgTeamRepository) FindByIDs(ctx context.Context, ids []string) ([]*Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, name, category, pole, coach_id, created_at, updated_at
		FROM teams WHERE id = ANY($1)
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTeams(rows)
}

func (r *pgTeamRepository) FindByCoachID(ctx context.Context, coachID string) ([]*Team, error) {
	query := `
		SELECT id, name, category, pole, coach_id, created_at, updated_at
		FROM teams WHERE coach_id = $1
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTeams(rows)
}

func scanTeams(rows pgx.Rows) ([]*Team, error) {
	var teams []*Team
	for rows.Next() {
		team := &Team{}
		if err := rows.Scan(
			&team.ID, &team.Name, &team.Category, &team.Pole,
			&team.CoachID, &team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (r *pgTeamRepository) Update(ctx context.Context, team *Team) error {
	query := `
		UPDATE teams SET name = $2, category = $3, pole = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, team.ID, team.Name, team.Category, team.Pole)
	return err
}

func (r *pgTeamRepository) AssignCoach(ctx context.Context, teamID string, coachID *string) error {
	query := `UPDATE teams SET coach_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, teamID, coachID)
	return err
}

func (r *pgTeamRepository) ClearCoach(ctx context.Context, coachID string) error {
	query := `UPDATE teams SET coach_id = NULL, updated_at = NOW() WHERE coach_id = $1`
	_, err := r.pool.Exec(ctx, query, coachID)
	return err
}

func (r *pgTeamRepository) CountByCoachID(ctx context.Context, coachID string) (int, error) {
	query := `SELECT COUNT(*) FROM teams WHERE coach_id = $1`
	var count int
	err := r.pool.QueryRow(ctx, query, coachID).Scan(&count)
	return count, err
}

func (r *pgTeamRepository) FindMembershipTeamIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT team_id FROM team_memberships WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teamIDs []string
	for rows.Next() {
		var teamID string
		if err := rows.Scan(&teamID); err != nil {
			return nil, err
		}
		teamIDs = append(teamIDs, teamID)
	}
	return teamIDs, nil
}

func (r *pgTeamRepository) ReplaceMemberships(ctx context.Context, userID string, teamIDs []string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM team_memberships WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, teamID := range teamIDs {
		query := `
			INSERT INTO team_memberships (user_id, team_id, role)
			VALUES ($1, $2, 'coach')
			ON CONFLICT (user_id, team_id) DO NOTHING
		`
		if _, err := r.pool.Exec(ctx, query, userID, teamID); err != nil {
			return err
		}
	}
	return nil
}
