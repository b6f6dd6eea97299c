package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Player represents a licensed club player attached to a team
type Player struct {
	ID            string
	Firstname     string
	Lastname      string
	Birthdate     *time.Time
	LicenceNumber *string
	Position      *string
	TeamID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PlayerRepository defines player data operations
type PlayerRepository interface {
	Create(ctx context.Context, player *Player) error
	// CreateCompat inserts without the position column, for stores that
	// predate the position schema rollout.
	CreateCompat(ctx context.Context, player *Player) error
	FindByID(ctx context.Context, id string) (*Player, error)
	FindByTeamID(ctx context.Context, teamID string) ([]*Player, error)
	FindAll(ctx context.Context) ([]*Player, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, player *Player) error
	Move(ctx context.Context, playerID, teamID string) error
	Delete(ctx context.Context, id string) error
}

type pgPlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PostgreSQL player repository
func NewPlayerRepository(pool *pgxpool.Pool) PlayerRepository {
	return &pgPlayerRepository{pool: pool}
}

func (r *pgPlayerRepository) Create(ctx context.Context, player *Player) error {
	query := `
		INSERT INTO players (firstname, lastname, birthdate, licence_number, position, team_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		player.Firstname, player.Lastname, player.Birthdate,
		player.LicenceNumber, player.Position, player.TeamID,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
}

func (r *pgPlayerRepository) CreateCompat(ctx context.Context, player *Player) error {
	query := `
		INSERT INTO players (firstname, lastname, birthdate, licence_number, team_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		player.Firstname, player.Lastname, player.Birthdate,
		player.LicenceNumber, player.TeamID,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
}

func (r *pgPlayerRepository) FindByID(ctx context.Context, id string) (*Player, error) {
	query := `
		SELECT id, firstname, lastname, birthdate, licence_number, position, team_id, created_at, updated_at
		FROM players WHERE id = $1
	`
	player := &Player{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&player.ID, &player.Firstname, &player.Lastname, &player.Birthdate,
		&player.LicenceNumber, &player.Position, &player.TeamID,
		&player.CreatedAt, &player.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (r *pgPlayerRepository) FindByTeamID(ctx context.Context, teamID string) ([]*Player, error) {
	query := `
		SELECT id, firstname, lastname, birthdate, licence_number, position, team_id, created_at, updated_at
		FROM players WHERE team_id = $1
		ORDER BY lastname, firstname
	`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *pgPlayerRepository) FindAll(ctx context.Context) ([]*Player, error) {
	query := `
		SELECT id, firstname, lastname, birthdate, licence_number, position, team_id, created_at, updated_at
		FROM players
		ORDER BY lastname, firstname
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func scanPlayers(rows pgx.Rows) ([]*Player, error) {
	var players []*Player
	for rows.Next() {
		player := &Player{}
		if err := rows.Scan(
			&player.ID, &player.Firstname, &player.Lastname, &player.Birthdate,
			&player.LicenceNumber, &player.Position, &player.TeamID,
			&player.CreatedAt, &player.UpdatedAt,
		); err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

func (r *pgPlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	return count, err
}

// Update writes every payload field including team_id: an update whose
// payload names another team moves the player, and the services
// authorize both teams before calling this.
func (r *pgPlayerRepository) Update(ctx context.Context, player *Player) error {
	query := `
		UPDATE players
		SET firstname = $2, lastname = $3, birthdate = $4, licence_number = $5, position = $6, team_id = $7, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		player.ID, player.Firstname, player.Lastname, player.Birthdate,
		player.LicenceNumber, player.Position, player.TeamID,
	)
	return err
}

func (r *pgPlayerRepository) Move(ctx context.Context, playerID, teamID string) error {
	query := `UPDATE players SET team_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, playerID, teamID)
	return err
}

func (r *pgPlayerRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM players WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
