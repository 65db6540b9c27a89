// Package scheduler holds the periodic evaluators: daily event-card posting,
// time-based reminders and cleanup. Each evaluator is a poll-and-compare loop
// over guild-local wall-clock time; the dedup ledgers in storage make every
// external side effect at-most-once, so a tick can always be re-run safely.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/musterbot/muster/internal/config"
	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

type Scheduler struct {
	store *storage.Storage
	msg   Messenger
	cfg   *config.Config
	now   func() time.Time
}

func New(store *storage.Storage, msg Messenger, cfg *config.Config) *Scheduler {
	return &Scheduler{store: store, msg: msg, cfg: cfg, now: time.Now}
}

// Run drives the three tick loops until ctx is done. Posting and reminders
// also run once immediately so a restart picks up missed work without waiting
// a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	postTicker := time.NewTicker(s.cfg.PostingTick)
	remindTicker := time.NewTicker(s.cfg.ReminderTick)
	cleanupTicker := time.NewTicker(s.cfg.CleanupTick)
	defer postTicker.Stop()
	defer remindTicker.Stop()
	defer cleanupTicker.Stop()

	s.PostingTick(ctx)
	s.ReminderTick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-postTicker.C:
			s.PostingTick(ctx)
		case <-remindTicker.C:
			s.ReminderTick(ctx)
		case <-cleanupTicker.C:
			s.CleanupTick(ctx)
		}
	}
}

// PostingTick evaluates daily posting for every guild with bounded fan-out.
// One guild's failure never aborts the others.
func (s *Scheduler) PostingTick(ctx context.Context) {
	guilds, err := s.store.AllSettings()
	if err != nil {
		log.Error().Err(err).Msg("posting tick: load guild settings")
		return
	}
	now := s.now()
	util.Parallel(ctx, guilds, s.cfg.GuildFanOut, func(ctx context.Context, gs storage.GuildSettings) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.APITimeout)
		defer cancel()
		if err := s.evaluatePosting(callCtx, gs, now); err != nil {
			log.Error().Err(err).Str("guild", gs.GuildID).Msg("posting evaluation failed")
		}
	})
}

// ReminderTick evaluates reminders for every guild with bounded fan-out.
func (s *Scheduler) ReminderTick(ctx context.Context) {
	guilds, err := s.store.AllSettings()
	if err != nil {
		log.Error().Err(err).Msg("reminder tick: load guild settings")
		return
	}
	now := s.now()
	util.Parallel(ctx, guilds, s.cfg.GuildFanOut, func(ctx context.Context, gs storage.GuildSettings) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.APITimeout)
		defer cancel()
		if err := s.evaluateReminders(callCtx, gs, now, false); err != nil {
			log.Error().Err(err).Str("guild", gs.GuildID).Msg("reminder evaluation failed")
		}
	})
}

// location resolves a guild's timezone, falling back to the process default.
func (s *Scheduler) location(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
		log.Warn().Str("timezone", name).Msg("unknown guild timezone, using default")
	}
	if loc, err := time.LoadLocation(s.cfg.DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
