package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

// evaluateReminders checks every enabled reminder type for the guild. Each
// type has its own ledger row, so partial delivery (one type sent, another
// failed) is recoverable on the next tick. Reminders never fire for a day
// without a posted card. With force, the time-of-day gate is skipped but the
// post-existence and dedup checks still hold.
func (s *Scheduler) evaluateReminders(ctx context.Context, gs storage.GuildSettings, now time.Time, force bool) error {
	if !gs.ReminderEnabled && !force {
		return nil
	}

	local := now.In(s.location(gs.Timezone))
	date := util.DateString(local)

	post, err := s.store.DailyPostForDate(gs.GuildID, date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	eventAt, err := util.ClockToday(local, gs.EventTime)
	if err != nil {
		return fmt.Errorf("event time: %w", err)
	}
	fourPM, err := util.ClockToday(local, "16:00")
	if err != nil {
		return err
	}

	checks := []struct {
		kind    string
		enabled bool
		trigger time.Time
	}{
		{storage.Reminder4PM, gs.Reminder4PM, fourPM},
		{storage.Reminder1Hour, gs.Reminder1H, eventAt.Add(-time.Hour)},
		{storage.Reminder15Min, gs.Reminder15M, eventAt.Add(-15 * time.Minute)},
		{storage.Reminder5Min, gs.Reminder5M, eventAt.Add(-5 * time.Minute)},
	}

	var firstErr error
	for _, c := range checks {
		if !c.enabled {
			continue
		}
		if !force && local.Before(c.trigger) {
			continue
		}

		sent, err := s.store.ReminderAlreadySent(post.ID, c.kind)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if sent {
			continue
		}

		reminder := Reminder{
			Type:      c.kind,
			Weekday:   post.Weekday,
			EventName: post.EventName,
			Outfit:    post.Outfit,
			Vehicle:   post.Vehicle,
			EventTime: gs.EventTime,
		}
		if err := s.msg.SendReminder(ctx, gs.EventChannelID, reminder); err != nil {
			// No ledger row: the next tick retries until the day rolls over.
			log.Warn().Err(err).Str("guild", gs.GuildID).Str("type", c.kind).
				Msg("reminder send failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.store.MarkReminderSent(post.ID, gs.GuildID, c.kind, date, s.now().UTC()); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Info().Str("guild", gs.GuildID).Str("type", c.kind).Str("date", date).
			Msg("reminder sent")
	}
	return firstErr
}

// TriggerReminders force-evaluates one guild's reminders immediately. With
// ignoreClock the trigger instants are bypassed, for verifying the decision
// logic without waiting; the dedup ledger still applies.
func (s *Scheduler) TriggerReminders(ctx context.Context, guildID string, ignoreClock bool) error {
	gs, err := s.store.Settings(guildID)
	if err != nil {
		return err
	}
	return s.evaluateReminders(ctx, *gs, s.now(), ignoreClock)
}
