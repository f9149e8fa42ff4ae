package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lucas/territories/internal/api"
	"github.com/lucas/territories/internal/config"
	"github.com/lucas/territories/internal/game"
	"github.com/lucas/territories/internal/game/worldgen"
	"github.com/lucas/territories/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	devMode := flag.Bool("dev", false, "enable development mode (exposes /api/dev/* routes)")
	flag.Parse()

	logger := newLogger(*devMode)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warnw("failed to load config, using defaults", "path", *configPath, "error", err)
		cfg = config.Default()
	}
	if *devMode {
		cfg.Dev.Enabled = true
		logger.Info("development mode enabled: /api/dev/* routes are live")
	}

	genParams := worldgen.Params{
		MinDistance:      cfg.Game.MinGeneralDistance,
		MinGridSize:      cfg.Game.MinGridSize,
		GridSizeMaxDelta: cfg.Game.GridSizeMaxDelta,
	}
	lobby := game.NewLobby(cfg.Lobby.Size, cfg.Game.TickInterval, genParams, logger)
	hub := ws.NewHub(logger)

	router := api.NewRouter(lobby, hub, cfg, logger)
	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infow("server starting", "addr", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lobby.StopAll(ctx)

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalw("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}

func newLogger(dev bool) *zap.SugaredLogger {
	var l *zap.Logger
	var err error
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return l.Sugar()
}
