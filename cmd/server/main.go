package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/saferoute-backend/internal/config"
	"github.com/smarttransit/saferoute-backend/internal/handlers"
	"github.com/smarttransit/saferoute-backend/internal/middleware"
	"github.com/smarttransit/saferoute-backend/internal/repository"
	"github.com/smarttransit/saferoute-backend/internal/services"
	"github.com/smarttransit/saferoute-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SafeRoute routing backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Open the upstream network source
	logger.WithField("source", cfg.Source.Kind).Info("Opening network source...")
	source, closeSource, err := repository.OpenSource(cfg)
	if err != nil {
		logger.Fatalf("Failed to open network source: %v", err)
	}
	defer closeSource()

	// Initialize services
	routingService := services.NewRoutingService(source, logger, cfg.Routing)
	if cfg.Routing.EagerLoad {
		// a failed eager load is not fatal; the first query retries
		if err := routingService.Load(context.Background()); err != nil {
			logger.WithError(err).Warn("Initial graph load failed, will retry on first query")
		}
	}

	refreshService := services.NewRefreshService(routingService, logger, cfg.Refresh.Schedule)
	if err := refreshService.Start(); err != nil {
		logger.Fatalf("Failed to start refresh service: %v", err)
	}

	routeHandler := handlers.NewRouteHandler(routingService, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.HeadersWith(middleware.RequestIDHeader),
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Health and readiness
	router.GET("/health", routeHandler.Health)
	router.GET("/ready", routeHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/route", routeHandler.FindRoute)

		if cfg.Admin.JWTSecret != "" {
			jwtService := jwt.NewService(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiry)
			admin := v1.Group("/admin")
			admin.Use(middleware.AdminAuth(jwtService, logger), middleware.RequireRole("admin"))
			{
				admin.POST("/graph/reload", routeHandler.ReloadGraph)
			}
		} else {
			logger.Warn("ADMIN_JWT_SECRET not set, admin routes disabled")
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a first query may include the graph load
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	refreshService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
