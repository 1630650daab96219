package handlers

import (
	"net/http"

	"agronorte-pos/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the single operator account the shop configures via
// environment variables. There is no user table: one store, one login.
type Credentials struct {
	Operator     string
	PasswordHash string // bcrypt
}

// AuthHandler implements the operator login endpoint.
type AuthHandler struct {
	creds  Credentials
	logger *zap.Logger
}

// NewAuthHandler creates the login handler for the configured credentials.
func NewAuthHandler(creds Credentials, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{creds: creds, logger: logger}
}

// LoginRequest keeps the field names the frontend form submits.
type LoginRequest struct {
	Usuario string `json:"usuario" binding:"required"`
	Senha   string `json:"senha" binding:"required"`
}

// Login checks the operator credentials and hands back a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Usuário e senha são obrigatórios"})
		return
	}

	if input.Usuario != h.creds.Operator {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuário ou senha incorretos"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.creds.PasswordHash), []byte(input.Senha)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuário ou senha incorretos"})
		return
	}

	token, err := auth.GenerateToken(input.Usuario)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	h.logger.Info("operator logged in", zap.String("operator", input.Usuario))
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"usuario": input.Usuario,
	})
}
