package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agronorte-pos/internal/models"
	"agronorte-pos/internal/pos"
)

// SaleHandler exposes the open sale over HTTP. Every mutating endpoint
// answers with a fresh snapshot so the frontend can re-render fully from
// the response.
type SaleHandler struct {
	session *pos.Session
	logger  *zap.Logger
}

// NewSaleHandler creates the handler for the current-sale endpoints.
func NewSaleHandler(session *pos.Session, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{session: session, logger: logger}
}

// GetCurrentSale returns the open sale snapshot.
// GET /api/sale
func (h *SaleHandler) GetCurrentSale(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"venda": h.session.CurrentSale()})
}

// AddItemRequest mirrors the product form fields.
type AddItemRequest struct {
	ProductName  string          `json:"nome_produto" binding:"required"`
	Quantity     decimal.Decimal `json:"quantidade"`
	QuantityUnit string          `json:"tipo_quantidade"`
	UnitPrice    decimal.Decimal `json:"preco_unitario"`
}

// AddItem appends a product line to the open sale.
// POST /api/sale/items
func (h *SaleHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Preencha todos os campos corretamente"})
		return
	}

	sale, err := h.session.AddItem(pos.ItemInput{
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		QuantityUnit: models.QuantityUnit(req.QuantityUnit),
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"venda": sale})
}

// RemoveItem drops a product line from the open sale.
// DELETE /api/sale/items/:id
func (h *SaleHandler) RemoveItem(c *gin.Context) {
	sale, err := h.session.RemoveItem(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"venda": sale})
}

// RequestClear asks for a confirmation token before wiping the open sale -
// the two-step replaces the confirm dialog the frontend used to own.
// POST /api/sale/clear
func (h *SaleHandler) RequestClear(c *gin.Context) {
	token, err := h.session.RequestClear()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"mensagem": "Tem certeza que deseja remover todos os produtos da venda atual?",
	})
}

// ConfirmClearRequest carries the token issued by RequestClear.
type ConfirmClearRequest struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmClear executes a pending clear and returns the fresh open sale.
// POST /api/sale/clear/confirm
func (h *SaleHandler) ConfirmClear(c *gin.Context) {
	var req ConfirmClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token de confirmação é obrigatório"})
		return
	}

	sale, err := h.session.ConfirmClear(req.Token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"venda": sale})
}

// FinalizeRequest carries the optional finalize-time fields.
type FinalizeRequest struct {
	CustomerName  string `json:"nome_cliente"`
	PaymentMethod string `json:"forma_pagamento"`
}

// Finalize freezes the open sale into history and opens the next one.
// The response carries both: the finalized record (for the receipt prompt)
// and the new open sale (for the re-render).
// POST /api/sale/finalize
func (h *SaleHandler) Finalize(c *gin.Context) {
	// An empty body is fine: both finalize-time fields are optional.
	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corpo da requisição inválido"})
		return
	}

	finalized, err := h.session.Finalize(pos.FinalizeInput{
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"venda_finalizada": finalized,
		"venda":            h.session.CurrentSale(),
	})
}
