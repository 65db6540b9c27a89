package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

// Errors the manual posting path reports back to the invoking admin.
var (
	ErrNoEventChannel = errors.New("no event channel configured")
	ErrNoSchedule     = errors.New("no schedule entry for this weekday")
	ErrStaleSchedule  = errors.New("schedule was last updated before this week")
	ErrAlreadyPosted  = errors.New("today's event card already exists")
)

// evaluatePosting decides whether the guild needs today's event card. The
// DailyPost unique index is the at-most-once guard: if a concurrent tick wins
// the insert race, the loser deletes its own duplicate message.
func (s *Scheduler) evaluatePosting(ctx context.Context, gs storage.GuildSettings, now time.Time) error {
	if !gs.AutoDailyPosts || gs.EventChannelID == "" {
		return nil
	}

	local := now.In(s.location(gs.Timezone))
	postAt, err := util.ClockToday(local, gs.PostingTime)
	if err != nil {
		return fmt.Errorf("posting time: %w", err)
	}
	if local.Before(postAt) {
		return nil
	}

	date := util.DateString(local)
	if _, err := s.store.DailyPostForDate(gs.GuildID, date); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	err = s.postCard(ctx, gs, local)
	switch {
	case errors.Is(err, ErrNoSchedule):
		return s.notifyAdmin(ctx, gs, date, storage.NoticeScheduleMissing,
			fmt.Sprintf("No schedule entry for %s — today's event card was not posted. Use `/schedule setup` to configure the week.", util.WeekdayName(local)))
	case errors.Is(err, ErrStaleSchedule):
		return s.notifyAdmin(ctx, gs, date, storage.NoticeScheduleStale,
			"The weekly schedule was last updated before this week started — today's event card was not posted. Re-run `/schedule setup` with this week's events.")
	case errors.Is(err, ErrPermission):
		return s.notifyAdmin(ctx, gs, date, storage.NoticePermission,
			fmt.Sprintf("I can't send messages in <#%s>. Grant Send Messages there or change the event channel.", gs.EventChannelID))
	default:
		return err
	}
}

// ManualPost posts today's card on demand, ignoring auto_daily_posts and the
// posting time. With force, an existing card is deleted and recreated; without
// it an existing card is an error. Configuration problems come back as typed
// errors for the invoking command to explain.
func (s *Scheduler) ManualPost(ctx context.Context, guildID string, force bool) error {
	gs, err := s.store.Settings(guildID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoEventChannel
		}
		return err
	}
	if gs.EventChannelID == "" {
		return ErrNoEventChannel
	}

	local := s.now().In(s.location(gs.Timezone))
	date := util.DateString(local)

	existing, err := s.store.DailyPostForDate(guildID, date)
	switch {
	case err == nil && !force:
		return ErrAlreadyPosted
	case err == nil:
		if existing.MessageID != "" {
			if err := s.msg.DeleteMessage(ctx, existing.ChannelID, existing.MessageID); err != nil {
				log.Warn().Err(err).Str("guild", guildID).Msg("forced repost: could not delete old card message")
			}
		}
		if err := s.store.DeleteDailyPost(existing.ID); err != nil {
			return fmt.Errorf("remove old post: %w", err)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	return s.postCard(ctx, *gs, local)
}

// postCard resolves today's schedule entry, sends the card and records the
// ledger row.
func (s *Scheduler) postCard(ctx context.Context, gs storage.GuildSettings, local time.Time) error {
	weekday := util.WeekdayName(local)
	date := util.DateString(local)

	entry, err := s.store.ScheduleDay(gs.GuildID, weekday)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNoSchedule
	} else if err != nil {
		return err
	}

	lastUpdated, err := s.store.ScheduleLastUpdated(gs.GuildID)
	if err != nil {
		return err
	}
	if lastUpdated.Before(util.WeekStart(local)) {
		return ErrStaleSchedule
	}

	card := EventCard{
		PostID:    uuid.NewString(),
		EventDate: date,
		Weekday:   weekday,
		EventName: entry.EventName,
		Outfit:    entry.Outfit,
		Vehicle:   entry.Vehicle,
		EventTime: gs.EventTime,
		Timezone:  gs.Timezone,
	}

	messageID, err := s.msg.SendEventCard(ctx, gs.EventChannelID, card)
	if err != nil {
		return fmt.Errorf("send event card: %w", err)
	}

	post := &storage.DailyPost{
		ID:        card.PostID,
		GuildID:   gs.GuildID,
		EventDate: date,
		ChannelID: gs.EventChannelID,
		MessageID: messageID,
		Weekday:   weekday,
		EventName: entry.EventName,
		Outfit:    entry.Outfit,
		Vehicle:   entry.Vehicle,
	}
	if err := s.store.CreateDailyPost(post); err != nil {
		if storage.IsDuplicate(err) {
			// Lost the insert race to a concurrent tick; remove our extra card.
			if delErr := s.msg.DeleteMessage(ctx, gs.EventChannelID, messageID); delErr != nil {
				log.Warn().Err(delErr).Str("guild", gs.GuildID).Msg("could not remove duplicate card message")
			}
			return nil
		}
		// Known gap: the message exists but the ledger write failed.
		return fmt.Errorf("ledger write failed after send, message %s dangling in %s: %w",
			messageID, gs.EventChannelID, err)
	}

	log.Info().Str("guild", gs.GuildID).Str("date", date).Str("event", entry.EventName).
		Msg("event card posted")
	return nil
}

// notifyAdmin sends a capped (one per guild per day per type) notice to the
// guild's admin channel. Without an admin channel the cap is still recorded so
// the condition is logged once, not every tick.
func (s *Scheduler) notifyAdmin(ctx context.Context, gs storage.GuildSettings, date, noticeType, text string) error {
	sent, err := s.store.NoticeAlreadySent(gs.GuildID, date, noticeType)
	if err != nil || sent {
		return err
	}

	if gs.AdminChannelID != "" {
		if err := s.msg.SendAdminNotice(ctx, gs.AdminChannelID, text); err != nil {
			log.Warn().Err(err).Str("guild", gs.GuildID).Str("type", noticeType).
				Msg("admin notice send failed, will retry next tick")
			return nil
		}
	} else {
		log.Warn().Str("guild", gs.GuildID).Str("type", noticeType).Msg(text)
	}

	return s.store.MarkNoticeSent(gs.GuildID, date, noticeType, s.now().UTC())
}
