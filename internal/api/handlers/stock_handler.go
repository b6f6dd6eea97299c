package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ascmontjoie/club-portal-backend/internal/api/middleware"
	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
)

// StockHandler handles stock management HTTP requests
type StockHandler struct {
	stockService service.StockService
}

// StockItemRequest represents the request body for creating or updating a stock item
type StockItemRequest struct {
	Name      string          `json:"name" binding:"required"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// AdjustQuantityRequest represents the request body for a stock adjustment
type AdjustQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// Create adds a stock item (staff and above)
func (h *StockHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.stockService.Create(c.Request.Context(), userID,
		req.Name, req.Category, req.Quantity, req.UnitPrice)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toStockItemResponse(item))
}

// Get retrieves a stock item by ID
func (h *StockHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	item, err := h.stockService.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStockItemResponse(item))
}

// List lists all stock items
func (h *StockHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	items, err := h.stockService.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]StockItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toStockItemResponse(item))
	}

	c.JSON(http.StatusOK, responses)
}

// Update updates a stock item
func (h *StockHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &repository.StockItem{
		ID:        c.Param("id"),
		Name:      req.Name,
		Category:  req.Category,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}
	if err := h.stockService.Update(c.Request.Context(), userID, item); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStockItemResponse(item))
}

// Adjust applies a quantity delta to a stock item
func (h *StockHandler) Adjust(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.stockService.AdjustQuantity(c.Request.Context(), userID, c.Param("id"), req.Delta); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quantity adjusted"})
}

// Delete removes a stock item
func (h *StockHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.stockService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock item deleted"})
}
