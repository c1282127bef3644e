package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
)

// paymentHandler handles payment application and allocation preview.
type paymentHandler struct {
	allocationService portssvc.AllocationSvcFacade
}

func newPaymentHandler(as portssvc.AllocationSvcFacade) *paymentHandler {
	return &paymentHandler{allocationService: as}
}

// registerPaymentRoutes registers payment routes under a company scope.
func registerPaymentRoutes(rg *gin.RouterGroup, allocationService portssvc.AllocationSvcFacade) {
	h := newPaymentHandler(allocationService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.applyPayment)
		payments.POST("/suggest", h.suggestAllocations)
	}
}

// applyPayment records a payment against a party and allocates it across
// outstanding documents, either explicitly or FIFO.
func (h *paymentHandler) applyPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for applyPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.allocationService.ApplyPayment(c.Request.Context(), companyID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrOverAllocation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidRate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			respondServiceError(c, logger, err, "Failed to apply payment")
		}
		return
	}

	logger.Info("Payment applied",
		slog.String("party_id", req.PartyID),
		slog.Int("allocations", len(resp.Allocations)))
	c.JSON(http.StatusCreated, resp)
}

// suggestAllocations previews the FIFO allocation for a payment amount
// without writing anything.
func (h *paymentHandler) suggestAllocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.SuggestAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for suggestAllocations", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	allocations, err := h.allocationService.SuggestAllocations(c.Request.Context(), companyID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidRate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondServiceError(c, logger, err, "Failed to suggest allocations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocations": allocations})
}
