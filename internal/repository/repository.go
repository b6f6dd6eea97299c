// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// Models / Entities
// ============================================

// Profile is the authenticated identity record. It is the only source of
// truth for role and active status; nothing client-supplied is trusted.
type Profile struct {
	ID        string
	Email     string
	Password  string
	FullName  string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ============================================
// Postgres error classification
// ============================================

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a duplicate-key failure
func IsUniqueViolation(err error) bool {
	return pgErrCode(err) == "23505"
}

// IsForeignKeyViolation reports a referential-integrity failure
func IsForeignKeyViolation(err error) bool {
	return pgErrCode(err) == "23503"
}

// IsUndefinedTable reports that the target table does not exist. The legacy
// membership sync treats this as "nothing to mirror".
func IsUndefinedTable(err error) bool {
	return pgErrCode(err) == "42P01"
}

// IsUndefinedColumn reports that a column does not exist yet. The approval
// executor uses this for its strip-and-retry compatibility shim.
func IsUndefinedColumn(err error) bool {
	return pgErrCode(err) == "42703"
}

// ============================================
// Profile Repository
// ============================================

// ProfileRepository defines identity/profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindAll(ctx context.Context) ([]*Profile, error)
	FindByRole(ctx context.Context, role string) ([]*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	UpdateRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
}

type pgProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &pgProfileRepository{pool: pool}
}

func (r *pgProfileRepository) Create(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (email, password, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		profile.Email, profile.Password, profile.FullName, profile.Role, profile.IsActive,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *pgProfileRepository) FindByID(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, email, password, full_name, role, is_active, created_at, updated_at
		FROM profiles WHERE id = $1
	`
	profile := &Profile{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID, &profile.Email, &profile.Password, &profile.FullName,
		&profile.Role, &profile.IsActive, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *pgProfileRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `
		SELECT id, email, password, full_name, role, is_active, created_at, updated_at
		FROM profiles WHERE email = $1
	`
	profile := &Profile{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&profile.ID, &profile.Email, &profile.Password, &profile.FullName,
		&profile.Role, &profile.IsActive, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *pgProfileRepository) FindAll(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT id, email, password, full_name, role, is_active, created_at, updated_at
		FROM profiles
		ORDER BY full_name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func (r *pgProfileRepository) FindByRole(ctx context.Context, role string) ([]*Profile, error) {
	query := `
		SELECT id, email, password, full_name, role, is_active, created_at, updated_at
		FROM profiles WHERE role = $1 AND is_active = TRUE
		ORDER BY full_name
	`
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func scanProfiles(rows pgx.Rows) ([]*Profile, error) {
	var profiles []*Profile
	for rows.Next() {
		profile := &Profile{}
		if err := rows.Scan(
			&profile.ID, &profile.Email, &profile.Password, &profile.FullName,
			&profile.Role, &profile.IsActive, &profile.CreatedAt, &profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Update writes the identity fields only. Password, role and active
// status have their own statements so a profile edit can never clobber
// them.
func (r *pgProfileRepository) Update(ctx context.Context, profile *Profile) error {
	query := `
		UPDATE profiles SET email = $2, full_name = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, profile.ID, profile.Email, profile.FullName)
	return err
}

func (r *pgProfileRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	query := `UPDATE profiles SET password = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, hashedPassword)
	return err
}

func (r *pgProfileRepository) UpdateRole(ctx context.Context, id, role string) error {
	query := `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, role)
	return err
}

func (r *pgProfileRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE profiles SET is_active = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, active)
	return err
}

func (r *pgProfileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM profiles WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Archive scrubs the identity instead of deleting it: used when a hard
// delete fails on referential constraints. The row keeps its id so foreign
// keys stay valid, but all personal fields are anonymized and the role is
// reset to viewer.
func (r *pgProfileRepository) Archive(ctx context.Context, id string) error {
	query := `
		UPDATE profiles
		SET email = $2, full_name = 'Archived member', role = 'viewer',
		    is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`
	anonEmail := fmt.Sprintf("archived-%s@invalid.local", uuid.New().String()[:8])
	_, err := r.pool.Exec(ctx, query, id, anonEmail)
	return err
}
