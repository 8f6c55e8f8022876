package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/shared-canvas/backend/api/handlers"
	"github.com/shared-canvas/backend/internal/config"
	"github.com/shared-canvas/backend/internal/db"
	"github.com/shared-canvas/backend/internal/repository"
	"github.com/shared-canvas/backend/internal/ws"
)

func main() {
	cfg := config.Load()

	// Ensure the data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database before accepting any request; handlers get ready
	// handles, never nullable globals.
	database, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize repositories
	strokeRepo := repository.NewStrokeRepository(database)
	userRepo := repository.NewUserRepository(database)

	// Initialize broadcast hub and WebSocket handler
	hub := ws.NewHub()
	defer hub.Close()
	wsHandler := ws.NewHandler(hub, strokeRepo, cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize)

	// Initialize handlers
	canvasHandler := handlers.NewCanvasHandler(strokeRepo, hub)
	authHandler := handlers.NewAuthHandler(userRepo)
	socketHandler := handlers.NewWebSocketHandler(wsHandler)

	// Initialize Gin router
	r := gin.Default()

	// Enable CORS for development
	r.Use(corsMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Routes live at the root, matching the wire protocol
	root := r.Group("/")
	{
		canvasHandler.RegisterRoutes(root)
		authHandler.RegisterRoutes(root)
		socketHandler.RegisterRoutes(root)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		hub.Close()
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Listening on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
