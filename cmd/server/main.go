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
	"github.com/spf13/afero"

	router "github.com/kiddieguard/sentinel/internal/adapters/http"
	"github.com/kiddieguard/sentinel/internal/adapters/ws"
	"github.com/kiddieguard/sentinel/internal/config"
	"github.com/kiddieguard/sentinel/internal/hub"
	"github.com/kiddieguard/sentinel/internal/store"
	"github.com/kiddieguard/sentinel/internal/vault"
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
		log.Fatal().Err(err).Msg("failed to load config")
	}

	fs := afero.NewOsFs()

	bunker, err := store.Open(fs, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open profile store")
	}

	snaps, err := vault.New(fs, cfg.VaultDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.VaultDir).Msg("failed to open vault")
	}

	broker := ws.NewBroker()
	registry := hub.NewRegistry()
	presence := hub.NewPresence(bunker, broker)
	relay := hub.NewRouter(registry, presence, snaps, broker)

	// No connection survived a restart, so any persisted online status is a
	// leftover. Restore the invariant before accepting traffic.
	presence.ResetAll()

	wsCtl := ws.NewController(relay, broker, cfg.ReadLimit)
	r := router.SetupRouter(ctx, cfg, bunker, snaps, wsCtl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Sentinel hub started")
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
