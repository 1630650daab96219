package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agronorte-pos/internal/history"
	"agronorte-pos/internal/pos"
)

// respondError maps core errors to HTTP statuses with a human-readable
// message. Anything unexpected (storage failures included) is a 500; the
// process itself never dies, the terminal stays open for the next sale.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *pos.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, pos.ErrEmptySale):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Não há produtos na venda"})
	case errors.Is(err, pos.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produto não encontrado na venda"})
	case errors.Is(err, history.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Venda não encontrada"})
	case errors.Is(err, pos.ErrSaleFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": "Venda já finalizada"})
	case errors.Is(err, pos.ErrNoPendingClear):
		c.JSON(http.StatusConflict, gin.H{"error": "Nenhuma limpeza pendente para confirmar"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
	}
}
