package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ridehub/internal/config"
	"ridehub/internal/handlers"
	"ridehub/internal/middleware"
	"ridehub/internal/repositories/mongodb"
	"ridehub/internal/services"
	"ridehub/internal/utils"
	"ridehub/pkg/cache"
	"ridehub/pkg/database"
	"ridehub/pkg/logger"
	"ridehub/pkg/sms"
	"ridehub/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx, db.Database); err != nil {
		cancel()
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	cancel()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisCache.Close()

	smsProvider := sms.NewTwilioProvider(
		cfg.SMS.TwilioAccountSID,
		cfg.SMS.TwilioAuthToken,
		cfg.SMS.TwilioFromNumber,
	)

	userRepo := mongodb.NewUserRepository(db.Database)
	driverRepo := mongodb.NewDriverRepository(db.Database, redisCache)
	rideRepo := mongodb.NewRideRepository(db.Database)

	rideService := services.NewRideService(rideRepo, driverRepo, userRepo, log)
	driverService := services.NewDriverService(driverRepo, userRepo, smsProvider, log)
	userService := services.NewUserService(userRepo, driverRepo, rideRepo, log)
	otpService := services.NewOTPService(userRepo, redisCache, smsProvider, log)

	rideHandler := handlers.NewRideHandler(rideService)
	driverHandler := handlers.NewDriverHandler(driverService)
	userHandler := handlers.NewUserHandler(userService, otpService)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := db.Ping(); err != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"app":     utils.AppName,
			"version": utils.AppVersion,
		})
	})

	v1 := router.Group("/api/v1")
	routes.SetupRideRoutes(v1, rideHandler, cfg.Security.JWTSecret)
	routes.SetupDriverRoutes(v1, driverHandler, cfg.Security.JWTSecret)
	routes.SetupUserRoutes(v1, userHandler, cfg.Security.JWTSecret)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("%s listening on :%d", utils.AppName, cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("forced shutdown: %v", err)
	}
}
