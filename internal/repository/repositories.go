package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	// Core repositories (pgxpool)
	ProfileRepo  ProfileRepository
	TeamRepo     TeamRepository
	PlayerRepo   PlayerRepository
	PlanningRepo PlanningRepository
	ApprovalRepo ApprovalRepository

	// Stock repository (sqlx)
	StockRepo StockRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sqlx.DB) *Repositories {
	return &Repositories{
		ProfileRepo:  NewProfileRepository(pool),
		TeamRepo:     NewTeamRepository(pool),
		PlayerRepo:   NewPlayerRepository(pool),
		PlanningRepo: NewPlanningRepository(pool),
		ApprovalRepo: NewApprovalRepository(pool),

		StockRepo: NewStockRepository(db),
	}
}
