package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanningSession is a recurring weekly training slot for a team.
// Start and end times are "HH:MM" strings, validated before any write.
type PlanningSession struct {
	ID        string
	TeamID    string
	Weekday   string
	StartTime string
	EndTime   string
	Location  *string
	CreatedAt time.Time
}

// AttendanceRecord marks a player's presence at one dated occurrence of a
// planning session
type AttendanceRecord struct {
	ID          string
	SessionID   string
	PlayerID    string
	SessionDate time.Time
	Status      string
	CreatedAt   time.Time
}

// PlanningRepository defines planning and attendance data operations
type PlanningRepository interface {
	Create(ctx context.Context, session *PlanningSession) error
	// CreateCompat inserts without the location column, for stores that
	// predate the location schema rollout.
	CreateCompat(ctx context.Context, session *PlanningSession) error
	FindByID(ctx context.Context, id string) (*PlanningSession, error)
	FindByTeamID(ctx context.Context, teamID string) ([]*PlanningSession, error)
	FindAll(ctx context.Context) ([]*PlanningSession, error)
	Delete(ctx context.Context, id string) error

	// Attendance operations
	UpsertAttendance(ctx context.Context, record *AttendanceRecord) error
	FindAttendance(ctx context.Context, sessionID string, date time.Time) ([]*AttendanceRecord, error)
}

type pgPlanningRepository struct {
	pool *pgxpool.Pool
}

// NewPlanningRepository creates a new PostgreSQL planning repository
func NewPlanningRepository(pool *pgxpool.Pool) PlanningRepository {
	return &pgPlanningRepository{pool: pool}
}

func (r *pgPlanningRepository) Create(ctx context.Context, session *PlanningSession) error {
	query := `
		INSERT INTO planning_sessions (team_id, weekday, start_time, end_time, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		session.TeamID, session.Weekday, session.StartTime, session.EndTime, session.Location,
	).Scan(&session.ID, &session.CreatedAt)
}

func (r *pgPlanningRepository) CreateCompat(ctx context.Context, session *PlanningSession) error {
	query := `
		INSERT INTO planning_sessions (team_id, weekday, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		session.TeamID, session.Weekday, session.StartTime, session.EndTime,
	).Scan(&session.ID, &session.CreatedAt)
}

func (r *pgPlanningRepository) FindByID(ctx context.Context, id string) (*PlanningSession, error) {
	query := `
		SELECT id, team_id, weekday, start_time, end_time, location, created_at
		FROM planning_sessions WHERE id = $1
	`
	session := &PlanningSession{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID, &session.TeamID, &session.Weekday,
		&session.StartTime, &session.EndTime, &session.Location, &session.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *pgPlanningRepository) FindByTeamID(ctx context.Context, teamID string) ([]*PlanningSession, error) {
	query := `
		SELECT id, team_id, weekday, start_time, end_time, location, created_at
		FROM planning_sessions WHERE team_id = $1
		ORDER BY weekday, start_time
	`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *pgPlanningRepository) FindAll(ctx context.Context) ([]*PlanningSession, error) {
	query := `
		SELECT id, team_id, weekday, start_time, end_time, location, created_at
		FROM planning_sessions
		ORDER BY weekday, start_time
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]*PlanningSession, error) {
	var sessions []*PlanningSession
	for rows.Next() {
		session := &PlanningSession{}
		if err := rows.Scan(
			&session.ID, &session.TeamID, &session.Weekday,
			&session.StartTime, &session.EndTime, &session.Location, &session.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *pgPlanningRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM planning_sessions WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgPlanningRepository) UpsertAttendance(ctx context.Context, record *AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (session_id, player_id, session_date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, player_id, session_date)
		DO UPDATE SET status = EXCLUDED.status
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		record.SessionID, record.PlayerID, record.SessionDate, record.Status,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *pgPlanningRepository) FindAttendance(ctx context.Context, sessionID string, date time.Time) ([]*AttendanceRecord, error) {
	query := `
		SELECT id, session_id, player_id, session_date, status, created_at
		FROM attendance_records WHERE session_id = $1 AND session_date = $2
	`
	rows, err := r.pool.Query(ctx, query, sessionID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*AttendanceRecord
	for rows.Next() {
		record := &AttendanceRecord{}
		if err := rows.Scan(
			&record.ID, &record.SessionID, &record.PlayerID,
			&record.SessionDate, &record.Status, &record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
