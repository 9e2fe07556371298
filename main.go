package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"survivor-pool-go/config"
	"survivor-pool-go/database"
	"survivor-pool-go/handlers"
	"survivor-pool-go/logging"
	"survivor-pool-go/middleware"
	"survivor-pool-go/services"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Output:      os.Stdout,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()

	ctx := context.Background()
	db, err := database.NewMongoConnection(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		Timeout:  cfg.Database.Timeout,
	})
	if err != nil {
		logging.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(context.Background())

	// Repositories
	gameRepo := database.NewMongoGameRepository(db)
	pickRepo := database.NewMongoPickRepository(db)
	oddsRepo := database.NewMongoOddsRepository(db)
	standingRepo := database.NewMongoStandingRepository(db)
	userRepo := database.NewMongoUserRepository(db)

	// Services
	feed := services.NewFeedClient(cfg.Feed.ScoreboardURL, cfg.Feed.OddsURL,
		cfg.Feed.Timeout, cfg.Feed.RatePerSecond, cfg.Feed.MaxAttempts)
	standingsService := services.NewStandingsService(pickRepo, standingRepo)
	settlementService := services.NewSettlementService(pickRepo, gameRepo, standingsService, cfg.App.WorkerCount)
	autopickService := services.NewAutoPickService(gameRepo, pickRepo, oddsRepo, userRepo, cfg.App.WorkerCount)
	syncService := services.NewSyncService(feed, gameRepo, oddsRepo, cfg.App.WorkerCount)
	pickService := services.NewPickService(pickRepo, gameRepo, userRepo)

	mailer := services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.FromEmail,
		FromName: cfg.Email.FromName,
	})
	if !mailer.IsConfigured() {
		logging.Warnf("Email not configured, pick reminders will fail to send")
	}
	reminderService := services.NewReminderService(userRepo, pickRepo, gameRepo, mailer, cfg.App.ReminderWindow)

	// Background sweeper
	sweeper := services.NewSweeper(syncService, settlementService, autopickService,
		gameRepo, pickRepo, cfg.App.CurrentSeason,
		cfg.App.SweepInterval, cfg.App.SweepDeadline, cfg.App.ReminderWindow)
	if cfg.App.SweeperEnabled {
		sweeper.Start()
		defer sweeper.Stop()
	} else {
		logging.Info("Sweeper disabled, rely on the admin trigger routes")
	}

	// HTTP surface
	router := mux.NewRouter()

	adminHandler := handlers.NewAdminHandler(settlementService, autopickService,
		syncService, reminderService, cfg.App.CurrentSeason)
	adminRouter := router.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuth(cfg.Admin.Token))
	adminHandler.RegisterRoutes(adminRouter)

	pickHandler := handlers.NewPickHandler(pickService, standingsService, cfg.App.CurrentSeason)
	pickHandler.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Infof("Server starting on %s", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Server shutdown error: %v", err)
	}
	logging.Info("Server stopped")
}
