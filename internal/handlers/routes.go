package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agronorte-pos/internal/middleware"
	"agronorte-pos/internal/pos"
)

// Register binds every endpoint on the given engine. Login stays open;
// everything touching the sale or the history requires the operator JWT.
func Register(r *gin.Engine, session *pos.Session, creds Credentials, logger *zap.Logger) {
	authHandler := NewAuthHandler(creds, logger)
	saleHandler := NewSaleHandler(session, logger)
	historyHandler := NewHistoryHandler(session, logger)
	aiHandler := NewAIHandler(session, logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "online"})
	})
	r.POST("/login", authHandler.Login)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/sale", saleHandler.GetCurrentSale)
		api.POST("/sale/items", saleHandler.AddItem)
		api.DELETE("/sale/items/:id", saleHandler.RemoveItem)
		api.POST("/sale/clear", saleHandler.RequestClear)
		api.POST("/sale/clear/confirm", saleHandler.ConfirmClear)
		api.POST("/sale/finalize", saleHandler.Finalize)

		api.GET("/sales", historyHandler.ListSales)
		api.GET("/sales/grouped", historyHandler.ListSalesByDay)
		api.GET("/sales/:id", historyHandler.GetSale)
		api.GET("/sales/:id/receipt", historyHandler.GetReceipt)

		api.POST("/ask", aiHandler.Ask)
	}
}
