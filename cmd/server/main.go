package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pointsbot/internal/api"
	"pointsbot/internal/bot"
	"pointsbot/internal/config"
	"pointsbot/internal/db"
	"pointsbot/internal/epoch"
	"pointsbot/internal/rewards"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting server", "reset_hour", cfg.ResetHour(), "timezone", cfg.Rewards.Timezone)

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	clock := epoch.NewClock(cfg.ResetHour(), cfg.Location())
	rewardsService := rewards.NewService(database, clock, rewards.Options{
		TokenTTL:       cfg.Rewards.AdTokenTTL,
		DailyViewLimit: cfg.Rewards.DailyViewLimit,
		CheckinPoints:  cfg.Rewards.CheckinPoints,
	})

	cleanupService := db.NewCleanupService(db.NewAdTokenRepository(database), cfg.Rewards.AdTokenTTL)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go cleanupService.Start(cleanupCtx)

	server, err := api.NewServer(cfg, database, rewardsService)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	botCtx, botCancel := context.WithCancel(context.Background())
	if cfg.Telegram.Token != "" {
		tgBot, err := bot.New(cfg, rewardsService)
		if err != nil {
			slog.Error("failed to start telegram bot", "error", err)
			os.Exit(1)
		}
		go tgBot.Run(botCtx)
	} else {
		slog.Warn("telegram token not configured, running HTTP API only")
	}

	addr := cfg.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
	}

	go func() {
		slog.Info("server listening", "addr", addr, "base_url", cfg.Server.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")

	botCancel()
	cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
