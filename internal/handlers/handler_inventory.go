package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
)

// itemHandler handles HTTP requests related to inventory items.
type itemHandler struct {
	valuationService portssvc.ValuationSvcFacade
}

func newItemHandler(vs portssvc.ValuationSvcFacade) *itemHandler {
	return &itemHandler{valuationService: vs}
}

// registerItemRoutes registers inventory item routes under a company scope.
// Stock quantities move only through document receive/post and never through
// these endpoints.
func registerItemRoutes(rg *gin.RouterGroup, valuationService portssvc.ValuationSvcFacade) {
	h := newItemHandler(valuationService)

	items := rg.Group("/items")
	{
		items.POST("", h.createItem)
		items.GET("", h.listItems)
		items.GET("/:item_id", h.getItem)
		items.PUT("/:item_id", h.updateItem)
	}
}

func (h *itemHandler) createItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.valuationService.CreateItem(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create item")
		return
	}

	logger.Info("Inventory item created", slog.String("item_id", item.ItemID))
	c.JSON(http.StatusCreated, dto.ToItemResponse(item))
}

func (h *itemHandler) getItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	itemID := c.Param("item_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.valuationService.GetItemByID(c.Request.Context(), companyID, itemID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve item")
		return
	}

	c.JSON(http.StatusOK, dto.ToItemResponse(item))
}

func (h *itemHandler) listItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListItemsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.valuationService.ListItems(c.Request.Context(), companyID, userID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list items")
		return
	}

	c.JSON(http.StatusOK, dto.ListItemsResponse{Items: dto.ToListItemResponse(items)})
}

func (h *itemHandler) updateItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	itemID := c.Param("item_id")

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.valuationService.UpdateItem(c.Request.Context(), companyID, itemID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update item")
		return
	}

	c.JSON(http.StatusOK, dto.ToItemResponse(item))
}
