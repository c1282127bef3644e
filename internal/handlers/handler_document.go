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

// documentHandler handles HTTP requests for business documents and their
// posting lifecycle.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
	postingService  portssvc.PostingSvcFacade
}

func newDocumentHandler(ds portssvc.DocumentSvcFacade, ps portssvc.PostingSvcFacade) *documentHandler {
	return &documentHandler{documentService: ds, postingService: ps}
}

// registerDocumentRoutes registers document routes under a company scope.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade, postingService portssvc.PostingSvcFacade) {
	h := newDocumentHandler(documentService, postingService)

	documents := rg.Group("/documents")
	{
		documents.POST("", h.createDocument)
		documents.GET("", h.listDocuments)
		documents.GET("/:document_id", h.getDocument)
		documents.POST("/:document_id/receive", h.receiveDocument)
		documents.POST("/:document_id/post", h.postDocument)
	}
}

func (h *documentHandler) createDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), companyID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidRate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondServiceError(c, logger, err, "Failed to create document")
		return
	}

	logger.Info("Document created", slog.String("document_id", doc.DocumentID), slog.String("kind", string(doc.Kind)))
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

func (h *documentHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), companyID, documentID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve document")
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

func (h *documentHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.documentService.ListDocuments(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list documents")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// receiveDocument marks a purchase order as received, moving stock in at the
// document's prices. Only purchase orders support this transition.
func (h *documentHandler) receiveDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.ReceivePurchaseOrder(c.Request.Context(), companyID, documentID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to receive purchase order")
		return
	}

	logger.Info("Purchase order received", slog.String("document_id", documentID))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// postDocument books the document to the general ledger through its posting
// rule and returns the created journal.
func (h *documentHandler) postDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	journal, err := h.postingService.PostDocument(c.Request.Context(), companyID, documentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyPosted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrMissingDefaultAccounts):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientStock):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotReceived):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			respondServiceError(c, logger, err, "Failed to post document")
		}
		return
	}

	logger.Info("Document posted", slog.String("document_id", documentID), slog.String("journal_id", journal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}
