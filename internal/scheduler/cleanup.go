package scheduler

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/musterbot/muster/pkg/util"
)

// CleanupTick deletes aged-out card messages (ledger rows stay), purges
// expired setup states and applies the guild retention policy.
func (s *Scheduler) CleanupTick(ctx context.Context) {
	now := s.now()

	cutoff := util.DateString(now.AddDate(0, 0, -s.cfg.MessageRetentionDays))
	posts, err := s.store.PostsWithMessagesBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("cleanup: list stale post messages")
	}
	for _, p := range posts {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.APITimeout)
		err := s.msg.DeleteMessage(callCtx, p.ChannelID, p.MessageID)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("guild", p.GuildID).Str("post", p.ID).
				Msg("cleanup: could not delete card message")
			continue
		}
		if err := s.store.ClearMessageRef(p.ID); err != nil {
			log.Error().Err(err).Str("post", p.ID).Msg("cleanup: clear message ref")
		}
	}

	if err := s.store.PurgeExpiredSetupStates(now); err != nil {
		log.Error().Err(err).Msg("cleanup: purge expired setup states")
	}

	stale, err := s.store.StaleGuilds(now.AddDate(0, 0, -s.cfg.GuildRetentionDays))
	if err != nil {
		log.Error().Err(err).Msg("cleanup: list stale guilds")
		return
	}
	for _, guildID := range stale {
		if err := s.store.PurgeGuild(guildID); err != nil {
			log.Error().Err(err).Str("guild", guildID).Msg("cleanup: purge stale guild")
			continue
		}
		log.Info().Str("guild", guildID).Int("retention_days", s.cfg.GuildRetentionDays).
			Msg("purged inactive guild")
	}
}
