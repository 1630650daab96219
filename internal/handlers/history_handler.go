package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agronorte-pos/internal/pos"
	"agronorte-pos/internal/receipt"
)

// HistoryHandler serves the finalized-sales history and receipts.
type HistoryHandler struct {
	session *pos.Session
	logger  *zap.Logger
}

// NewHistoryHandler creates the handler for the history endpoints.
func NewHistoryHandler(session *pos.Session, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{session: session, logger: logger}
}

// ListSales returns the flat history, most-recent-first.
// GET /api/sales
func (h *HistoryHandler) ListSales(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vendas": h.session.History()})
}

// ListSalesByDay returns the history bucketed by calendar day, most recent
// day first, ready for the grouped display.
// GET /api/sales/grouped
func (h *HistoryHandler) ListSalesByDay(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dias": h.session.GroupedHistory()})
}

// GetSale looks a finalized sale up by its unique ID.
// GET /api/sales/:id
func (h *HistoryHandler) GetSale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de venda inválido"})
		return
	}

	sale, err := h.session.FindSale(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"venda": sale})
}

// GetReceipt renders the PDF receipt for a finalized sale.
// GET /api/sales/:id/receipt
func (h *HistoryHandler) GetReceipt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de venda inválido"})
		return
	}

	sale, err := h.session.FindSale(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pdf, err := receipt.Render(sale)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("receipt generated",
		zap.Int64("sale_id", sale.ID),
		zap.Int("numero_venda", sale.DisplaySequence),
	)
	c.Header("Content-Disposition", `attachment; filename="`+receipt.Filename(sale)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
