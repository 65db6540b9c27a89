// Package discord glues the command registry, the storage layer and the
// scheduler to a discordgo session.
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/musterbot/muster/internal/config"
	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/report"
	"github.com/musterbot/muster/internal/scheduler"
	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/retrylimit"
)

// Bot is the Discord bot
type Bot struct {
	dg      *discordgo.Session
	storage *storage.Storage
	cfg     *config.Config
	deps    *core.Deps
	sched   *scheduler.Scheduler

	startSched sync.Once
	runCtx     context.Context
}

// StartBot runs the bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	limiter := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
	messenger := NewMessenger(dg, limiter)
	sched := scheduler.New(store, messenger, cfg)
	reporter := report.New(store, MemberCounter(dg))

	b := &Bot{
		dg:      dg,
		storage: store,
		cfg:     cfg,
		sched:   sched,
		deps: &core.Deps{
			Storage:   store,
			Scheduler: sched,
			Reporter:  reporter,
			Config:    cfg,
		},
		runCtx: ctx,
	}

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onGuildDelete)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing Discord session")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if b.cfg.InitSlashCommands {
		for _, g := range r.Guilds {
			if err := b.registerCommands(g.ID); err != nil {
				log.Error().Err(err).Str("guild", g.ID).Msg("slash command registration failed")
			}
		}
	} else {
		log.Info().Msg("slash command registration skipped")
	}

	b.startSched.Do(func() {
		go b.sched.Run(b.runCtx)
	})

	log.Info().Str("user", s.State.User.Username).Int("guilds", len(r.Guilds)).
		Msg("bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("joined guild")
	if err := b.storage.TouchGuild(g.ID); err != nil {
		log.Warn().Err(err).Str("guild", g.ID).Msg("could not record guild activity")
	}
	if err := b.registerCommands(g.ID); err != nil {
		log.Error().Err(err).Str("guild", g.ID).Msg("slash command registration failed")
	}
}

// onGuildDelete fires on kick or guild deletion; Unavailable means an outage,
// not a removal.
func (b *Bot) onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		return
	}
	log.Info().Str("guild", g.ID).Msg("removed from guild, purging its data")
	if err := b.storage.PurgeGuild(g.ID); err != nil {
		log.Error().Err(err).Str("guild", g.ID).Msg("guild purge failed")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		cmd, ok := core.GetCommand(name)
		if !ok {
			log.Warn().Str("command", name).Msg("unknown slash command")
			return
		}
		ctx := &core.SlashInteractionContext{Session: s, Event: i, Deps: b.deps}
		if err := cmd.Run(ctx); err != nil {
			log.Error().Err(err).Str("command", name).Msg("slash command failed")
			_ = core.RespondEphemeral(s, i, fmt.Sprintf("Something went wrong: %v", err))
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		handler := b.componentHandler(customID)
		if handler == nil {
			log.Warn().Str("custom_id", customID).Msg("no handler for component")
			return
		}
		ctx := &core.ComponentInteractionContext{Session: s, Event: i, Deps: b.deps}
		if err := handler.Component(ctx); err != nil {
			log.Error().Err(err).Str("custom_id", customID).Msg("component handler failed")
			_ = core.RespondEphemeral(s, i, fmt.Sprintf("Something went wrong: %v", err))
		}

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		handler := b.modalHandler(customID)
		if handler == nil {
			log.Warn().Str("custom_id", customID).Msg("no handler for modal submit")
			return
		}
		ctx := &core.ModalSubmitContext{Session: s, Event: i, Deps: b.deps}
		if err := handler.ModalSubmit(ctx); err != nil {
			log.Error().Err(err).Str("custom_id", customID).Msg("modal handler failed")
			_ = core.RespondEphemeral(s, i, fmt.Sprintf("Something went wrong: %v", err))
		}
	}
}

func (b *Bot) componentHandler(customID string) core.ComponentInteractionHandler {
	for _, cmd := range core.AllCommands() {
		h, ok := cmd.(core.ComponentInteractionHandler)
		if !ok {
			continue
		}
		if p := h.ComponentPrefix(); p != "" && strings.HasPrefix(customID, p) {
			return h
		}
	}
	return nil
}

func (b *Bot) modalHandler(customID string) core.ModalSubmitHandler {
	for _, cmd := range core.AllCommands() {
		h, ok := cmd.(core.ModalSubmitHandler)
		if !ok {
			continue
		}
		if p := h.ModalPrefix(); p != "" && strings.HasPrefix(customID, p) {
			return h
		}
	}
	return nil
}

// MemberCounter resolves guild member counts from the gateway cache.
func MemberCounter(s *discordgo.Session) report.MemberCounter {
	return func(guildID string) (int, error) {
		g, err := s.State.Guild(guildID)
		if err != nil {
			return 0, err
		}
		return g.MemberCount, nil
	}
}
