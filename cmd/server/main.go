package main

import (
	"log"
	"os"
	"time"

	"agronorte-pos/internal/database"
	"agronorte-pos/internal/handlers"
	"agronorte-pos/internal/history"
	"agronorte-pos/internal/pos"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer logger.Sync()

	// The terminal must stay usable even without its database: fall back
	// to an in-memory history and keep selling, just without durability.
	var store history.Store
	db, err := database.Connect(logger)
	if err == nil {
		store, err = database.NewSnapshotStore(db)
	}
	if err != nil {
		logger.Warn("database unavailable, sales history will not survive a restart", zap.Error(err))
		store = history.NewMemoryStore()
	}

	hist := history.NewManager(store, logger)
	session, err := pos.NewSession(hist, logger)
	if err != nil {
		logger.Fatal("failed to start POS session", zap.Error(err))
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.Register(r, session, operatorCredentials(logger), logger)

	// Serve the static frontend; any unknown path gets index.html so the
	// single page can handle its own routing.
	r.Static("/assets", "./web/assets")
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("server starting", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server failed to start", zap.Error(err))
	}
}

// operatorCredentials reads the single operator account from the
// environment. Without POS_PASSWORD_HASH a development default is derived
// so a fresh checkout still logs in, with a loud warning.
func operatorCredentials(logger *zap.Logger) handlers.Credentials {
	operator := os.Getenv("POS_USER")
	if operator == "" {
		operator = "agronorte"
	}

	passHash := os.Getenv("POS_PASSWORD_HASH")
	if passHash == "" {
		logger.Warn("POS_PASSWORD_HASH not set, using the default development password")
		derived, err := bcrypt.GenerateFromPassword([]byte("agronorte-dev"), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("failed to derive development password", zap.Error(err))
		}
		passHash = string(derived)
	}

	return handlers.Credentials{Operator: operator, PasswordHash: passHash}
}
