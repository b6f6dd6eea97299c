// internal/seed/seed.go
package seed

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	// Check if data already exists
	profiles, _ := repos.ProfileRepo.FindAll(ctx)
	if len(profiles) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial club data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// ============================================
	// PROFILES (one per role)
	// ============================================

	admin := &repository.Profile{
		Email:    "laurent.petit@ascmontjoie.fr",
		Password: string(password),
		FullName: "Laurent Petit",
		Role:     types.RoleAdmin,
		IsActive: true,
	}
	repos.ProfileRepo.Create(ctx, admin)

	staff := &repository.Profile{
		Email:    "camille.roy@ascmontjoie.fr",
		Password: string(password),
		FullName: "Camille Roy",
		Role:     types.RoleStaff,
		IsActive: true,
	}
	repos.ProfileRepo.Create(ctx, staff)

	coach := &repository.Profile{
		Email:    "karim.benali@ascmontjoie.fr",
		Password: string(password),
		FullName: "Karim Benali",
		Role:     types.RoleCoach,
		IsActive: true,
	}
	repos.ProfileRepo.Create(ctx, coach)

	viewer := &repository.Profile{
		Email:    "sophie.garnier@ascmontjoie.fr",
		Password: string(password),
		FullName: "Sophie Garnier",
		Role:     types.RoleViewer,
		IsActive: true,
	}
	repos.ProfileRepo.Create(ctx, viewer)

	// ============================================
	// TEAMS
	// ============================================

	pole := "formation"
	u13 := &repository.Team{Name: "U13 A", Category: types.CategoryU13, Pole: &pole}
	repos.TeamRepo.Create(ctx, u13)

	u15 := &repository.Team{Name: "U15 A", Category: types.CategoryU15, Pole: &pole}
	repos.TeamRepo.Create(ctx, u15)

	seniors := &repository.Team{Name: "Seniors 1", Category: types.CategorySenior}
	repos.TeamRepo.Create(ctx, seniors)

	// Karim coaches both youth teams
	repos.TeamRepo.AssignCoach(ctx, u13.ID, &coach.ID)
	repos.TeamRepo.AssignCoach(ctx, u15.ID, &coach.ID)
	repos.TeamRepo.ReplaceMemberships(ctx, coach.ID, []string{u13.ID, u15.ID})

	// ============================================
	// PLAYERS
	// ============================================

	licence := "FFH-2024-1031"
	position := "pivot"
	repos.PlayerRepo.Create(ctx, &repository.Player{
		Firstname:     "Noah",
		Lastname:      "Lambert",
		LicenceNumber: &licence,
		Position:      &position,
		TeamID:        u13.ID,
	})
	repos.PlayerRepo.Create(ctx, &repository.Player{
		Firstname: "Lina",
		Lastname:  "Moreau",
		TeamID:    u15.ID,
	})

	// ============================================
	// PLANNING
	// ============================================

	gym := "Gymnase Montjoie"
	repos.PlanningRepo.Create(ctx, &repository.PlanningSession{
		TeamID:    u13.ID,
		Weekday:   types.Wednesday,
		StartTime: "17:30",
		EndTime:   "19:00",
		Location:  &gym,
	})
	repos.PlanningRepo.Create(ctx, &repository.PlanningSession{
		TeamID:    seniors.ID,
		Weekday:   types.Friday,
		StartTime: "20:00",
		EndTime:   "22:00",
		Location:  &gym,
	})

	// ============================================
	// STOCK
	// ============================================

	repos.StockRepo.Create(ctx, &repository.StockItem{
		Name:      "Match ball T2",
		Category:  "equipment",
		Quantity:  24,
		UnitPrice: decimal.NewFromFloat(34.90),
	})
	repos.StockRepo.Create(ctx, &repository.StockItem{
		Name:      "Home jersey",
		Category:  "merchandising",
		Quantity:  60,
		UnitPrice: decimal.NewFromFloat(42.00),
	})

	log.Println("[Seed] ✅ Initial data created")
	log.Println("[Seed] Login with laurent.petit@ascmontjoie.fr / password123 (admin)")
}
