package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"orgmessages/internal/api"
	"orgmessages/internal/config"
	"orgmessages/internal/events"
	"orgmessages/internal/logging"
	"orgmessages/internal/repository"
	"orgmessages/internal/service"
)

// @title        Organization Messages API
// @version      1.0
// @description  CRUD over organization-scoped messages.
// @BasePath     /api/v1
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.IsProduction())
	if envErr != nil {
		log.Debug(".env file not found, using process environment")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub(log, cfg.AllowedOrigins)
	sinks := []events.Sink{hub}

	if cfg.RedisAddr != "" {
		redisClient, err := events.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("Closing Redis client...")
			_ = redisClient.Close()
		}()
		sinks = append(sinks, events.NewRedisSink(redisClient))
		log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	}

	if cfg.WebhookURL != "" {
		sinks = append(sinks, events.NewWebhookSink(&http.Client{Timeout: cfg.EventSinkTimeout}, cfg.WebhookURL, cfg.WebhookAuthKey))
		log.WithField("url", cfg.WebhookURL).Info("Webhook delivery enabled")
	}

	dispatcher := events.NewDispatcher(log, cfg.EventBufferSize, cfg.EventSinkTimeout, sinks...)
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer func() { _ = dispatcher.Stop() }()

	store := repository.NewMemoryStore()
	svc := service.NewMessageService(store, dispatcher, log)
	handler := api.NewAPIHandler(svc, store, log)
	router := api.NewRouter(handler, hub, log)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length", "Location"},
		MaxAge:           300,
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":            cfg.ServerPort,
			"env":             cfg.Env,
			"allowed_origins": cfg.AllowedOrigins,
			"sinks":           len(sinks),
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
