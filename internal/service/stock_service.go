package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Stock Service
// ============================================

// StockService manages club equipment and merchandise. Stock is a
// staff-level concern; nothing here goes through the approval queue.
type StockService interface {
	Create(ctx context.Context, actorID, name, category string, quantity int, unitPrice decimal.Decimal) (*repository.StockItem, error)
	GetByID(ctx context.Context, actorID, id string) (*repository.StockItem, error)
	List(ctx context.Context, actorID string) ([]*repository.StockItem, error)
	Update(ctx context.Context, actorID string, item *repository.StockItem) error
	AdjustQuantity(ctx context.Context, actorID, id string, delta int) error
	Delete(ctx context.Context, actorID, id string) error
}

type stockService struct {
	stockRepo repository.StockRepository
	scopeSvc  ScopeService
}

// NewStockService creates a new stock service
func NewStockService(stockRepo repository.StockRepository, scopeSvc ScopeService) StockService {
	return &stockService{stockRepo: stockRepo, scopeSvc: scopeSvc}
}

func (s *stockService) Create(ctx context.Context, actorID, name, category string, quantity int, unitPrice decimal.Decimal) (*repository.StockItem, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleStaff); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, validationErr("name", "is required")
	}
	if quantity < 0 {
		return nil, validationErr("quantity", "cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, validationErr("unit_price", "cannot be negative")
	}

	item := &repository.StockItem{
		Name:      name,
		Category:  category,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if err := s.stockRepo.Create(ctx, item); err != nil {
		return nil, classifyWriteError(err)
	}
	return item, nil
}

func (s *stockService) GetByID(ctx context.Context, actorID, id string) (*repository.StockItem, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleStaff); err != nil {
		return nil, err
	}

	item, err := s.stockRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *stockService) List(ctx context.Context, actorID string) ([]*repository.StockItem, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleStaff); err != nil {
		return nil, err
	}
	return s.stockRepo.FindAll(ctx)
}

func (s *stockService) Update(ctx context.Context, actorID string, item *repository.StockItem) error {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleStaff); err != nil {
		return err
	}
	if item.Quantity < 0 {
		return validationErr("quantity", "cannot be negative")
	}
	if item.UnitPrice.IsNegative() {
		return validationErr("unit_price", "cannot be negative")
	}

	existing, err := s.stockRepo.FindByID(ctx, item.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	return classifyWriteError(s.stockRepo.Update(ctx, item))
}

// AdjustQuantity applies a delta atomically. Driving stock below zero is
// refused by the store and surfaces as a conflict.
func (s *stockService) AdjustQuantity(ctx context.Context, actorID, id string, delta int) error {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleStaff); err != nil {
		return err
	}

	err := s.stockRepo.AdjustQuantity(ctx, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		item, findErr := s.stockRepo.FindByID(ctx, id)
		if findErr != nil {
			return findErr
		}
		if item == nil {
			return ErrNotFound
		}
		return ErrConflict
	}
	return classifyWriteError(err)
}

func (s *stockService) Delete(ctx context.Context, actorID, id string) error {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleStaff); err != nil {
		return err
	}
	return classifyWriteError(s.stockRepo.Delete(ctx, id))
}
