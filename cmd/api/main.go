package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/advisory-service/internal/chat"
	"github.com/Dan9191/advisory-service/internal/config"
	"github.com/Dan9191/advisory-service/internal/events"
	"github.com/Dan9191/advisory-service/internal/handler"
	"github.com/Dan9191/advisory-service/internal/integrations/ecb"
	"github.com/Dan9191/advisory-service/internal/repository"
	"github.com/Dan9191/advisory-service/internal/scheduler"
	"github.com/Dan9191/advisory-service/internal/service"
	"github.com/Dan9191/advisory-service/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	chatSettings, err := chat.LoadSettings(cfg.ChatSettingsPath)
	if err != nil {
		logger.Fatalf("Failed to load chat settings: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAnalyticsTopic, logger)
		if err != nil {
			logger.Fatalf("Failed to create analytics publisher: %v", err)
		}
		publisher = kp
	}
	defer publisher.Close()

	// Initialize layers
	repo := repository.NewRepository(db)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(service.Deps{
		Store:    repo,
		Chat:     chat.NewClient(cfg.LLMURL, cfg.LLMAPIKey, cfg.LLMModel, chatSettings, logger),
		Rates:    ecb.NewECBClient(cfg, logger),
		Events:   publisher,
		Notifier: mailer,
		Actions:  chatSettings.Actions,
	}, logger, cfg)
	if cfg.AdminEmail != "" {
		if err := svc.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatalf("Failed to bootstrap admin account: %v", err)
		}
	}
	h := handler.NewHandler(svc, logger)

	// Scheduled reports
	sched := scheduler.New(logger)
	if cfg.EnableReports {
		job := scheduler.NewForecastReport(svc, mailer, cfg.ReportRecipient, logger)
		if err := sched.AddForecastReport(cfg.ForecastReportCron, job); err != nil {
			logger.Fatalf("Failed to schedule forecast report: %v", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           h.Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Chat replies stream for longer than a regular request.
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
