/*
Package main is the entry point for the chatrelay service.

It loads configuration, initializes the global logging system, wires the
connection registry, topic, broadcaster, and submission bridge together,
starts the HTTP server, and handles operating system interrupt signals
(SIGINT, SIGTERM) for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/identity"
	"chatrelay/internal/configs"
	"chatrelay/internal/handler"
	"chatrelay/internal/pkg/logx"
)

func main() {
	// Load .env when present; absence is fine in production.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("topic", cfg.TopicName).
		Int("history_size", cfg.HistorySize).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the broadcast pipeline. Everything is injected; no component
	// reaches for ambient state.
	registry := chat.NewRegistry()
	topic := chat.NewTopic(cfg.TopicName)
	renderer := chat.NewJSONRenderer()
	history := chat.NewHistory(cfg.HistorySize)
	broadcaster := chat.NewBroadcaster(topic, renderer, history)
	sessions := identity.NewSessionStore(cfg.TokenSecret, cfg.SessionTTL)
	bridge := chat.NewBridge(registry, sessions, broadcaster, renderer, cfg.MaxMessageBytes)

	deps := &handler.AppDeps{
		Config:      cfg,
		Registry:    registry,
		Topic:       topic,
		Broadcaster: broadcaster,
		Bridge:      bridge,
		Sessions:    sessions,
		Usernames:   identity.NewGenerator(),
		History:     history,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("chatrelay starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	registry.CloseAll("server shutting down")

	logx.Info("Server gracefully stopped.")
}
