package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkraev/parley/internal/adapters/backend"
	router "github.com/dkraev/parley/internal/adapters/http"
	"github.com/dkraev/parley/internal/adapters/panel"
	"github.com/dkraev/parley/internal/app"
	"github.com/dkraev/parley/internal/config"
	"github.com/dkraev/parley/internal/geometry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	client := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)

	orch := &app.Orchestrator{
		Registry:     app.NewRegistry(),
		Rooms:        client,
		Messages:     client,
		Participants: client,
		Limiter:      app.NewPostRateLimiter(cfg.PostLimit, cfg.PostWindow),
		PollInterval: cfg.PollInterval,
	}

	ctrl := panel.NewPanelWSController(orch,
		geometry.Size{Width: cfg.PanelMinWidth, Height: cfg.PanelMinHeight},
		geometry.Size{Width: cfg.PanelDefaultWidth, Height: cfg.PanelDefaultHeight},
	)

	r := router.SetupRouter(ctx, cfg, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("backend", cfg.BackendURL).Msg("Parley gateway started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
