package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	_ "github.com/musterbot/muster/internal/command/core"
	_ "github.com/musterbot/muster/internal/command/post"
	_ "github.com/musterbot/muster/internal/command/remind"
	_ "github.com/musterbot/muster/internal/command/report"
	_ "github.com/musterbot/muster/internal/command/rsvp"
	_ "github.com/musterbot/muster/internal/command/schedule"
	_ "github.com/musterbot/muster/internal/command/settings"

	"github.com/musterbot/muster/internal/config"
	"github.com/musterbot/muster/internal/discord"
	"github.com/musterbot/muster/internal/logging"
	"github.com/musterbot/muster/internal/storage"
	v "github.com/musterbot/muster/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		logging.Setup("info", "")
		log.Fatal().Err(err).Msg("configuration error")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("app", v.AppName).Msg("starting bot")

	store, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("storage open failed")
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, store); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("bot error")
		}
		cancel()
	}

	log.Info().Msg("exited cleanly")
}
