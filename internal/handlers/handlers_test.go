package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"agronorte-pos/internal/history"
	"agronorte-pos/internal/models"
	"agronorte-pos/internal/pos"
)

const (
	testOperator = "agronorte"
	testPassword = "senha-de-teste"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	hist := history.NewManager(history.NewMemoryStore(), logger)
	session, err := pos.NewSession(hist, logger)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	router := gin.New()
	Register(router, session, Credentials{Operator: testOperator, PasswordHash: string(hash)}, logger)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doJSON(router, http.MethodPost, "/login", "", gin.H{
		"usuario": testOperator,
		"senha":   testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, "login should succeed: %s", w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/login", "", gin.H{
		"usuario": testOperator,
		"senha":   "errada",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/login", "", gin.H{"usuario": testOperator})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/sale", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/sale", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaleFullFlow(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	var saleID int64

	t.Run("AddItems", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/sale/items", token, gin.H{
			"nome_produto":    "Ração 10kg",
			"quantidade":      2,
			"tipo_quantidade": "unidade",
			"preco_unitario":  50.00,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(router, http.MethodPost, "/api/sale/items", token, gin.H{
			"nome_produto":    "Areia p/ gato",
			"quantidade":      1.5,
			"tipo_quantidade": "kg",
			"preco_unitario":  20.00,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Sale models.Sale `json:"venda"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Sale.Items, 2)
		assert.True(t, resp.Sale.Total.Equal(decimal.RequireFromString("130.00")),
			"expected total 130.00, got %s", resp.Sale.Total)
		saleID = resp.Sale.ID
	})

	t.Run("RemoveFirstItem", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/sale", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Sale models.Sale `json:"venda"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Sale.Items, 2)

		w = doJSON(router, http.MethodDelete, "/api/sale/items/"+resp.Sale.Items[0].ID, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Sale.Items, 1)
		assert.True(t, resp.Sale.Total.Equal(decimal.RequireFromString("30.00")))
	})

	t.Run("Finalize", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/sale/finalize", token, gin.H{
			"nome_cliente":    "Maria",
			"forma_pagamento": "Pix",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Finalized models.Sale `json:"venda_finalizada"`
			Current   models.Sale `json:"venda"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, saleID, resp.Finalized.ID)
		assert.True(t, resp.Finalized.Finalized)
		assert.Equal(t, "Maria", resp.Finalized.CustomerName)
		assert.True(t, resp.Finalized.Total.Equal(decimal.RequireFromString("30.00")))

		assert.NotEqual(t, saleID, resp.Current.ID)
		assert.Empty(t, resp.Current.Items)
		assert.Equal(t, 2, resp.Current.DisplaySequence)
	})

	t.Run("HistoryAndGrouping", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/sales", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var listResp struct {
			Sales []models.Sale `json:"vendas"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
		require.Len(t, listResp.Sales, 1)
		assert.Equal(t, saleID, listResp.Sales[0].ID)

		w = doJSON(router, http.MethodGet, "/api/sales/grouped", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var groupResp struct {
			Days []struct {
				Date  string        `json:"data"`
				Sales []models.Sale `json:"vendas"`
			} `json:"dias"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groupResp))
		require.Len(t, groupResp.Days, 1)
		assert.Len(t, groupResp.Days[0].Sales, 1)
	})

	t.Run("Receipt", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/sales/%d/receipt", saleID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF-", w.Body.String()[:5])
	})
}

func TestAddItemValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPost, "/api/sale/items", token, gin.H{
		"nome_produto":   "Ração",
		"quantidade":     0,
		"preco_unitario": 10.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/sale/items", token, gin.H{
		"quantidade":     1,
		"preco_unitario": 10.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing product name must be rejected")
}

func TestFinalizeEmptySaleFails(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPost, "/api/sale/finalize", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveUnknownItem(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodDelete, "/api/sale/items/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearFlow(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	// Nothing to clear on an empty sale.
	w := doJSON(router, http.MethodPost, "/api/sale/clear", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/sale/items", token, gin.H{
		"nome_produto":   "Ração 10kg",
		"quantidade":     1,
		"preco_unitario": 50.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/sale/clear", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var clearResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clearResp))
	require.NotEmpty(t, clearResp.Token)

	// Wrong token is a conflict, right token clears.
	w = doJSON(router, http.MethodPost, "/api/sale/clear/confirm", token, gin.H{"token": "bogus"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/sale/clear/confirm", token, gin.H{"token": clearResp.Token})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sale models.Sale `json:"venda"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Sale.Items)
}

func TestGetUnknownSale(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodGet, "/api/sales/123456", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/sales/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
