package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterbot/muster/internal/config"
	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

// fakeMessenger records every outgoing call and can be primed to fail.
type fakeMessenger struct {
	mu        sync.Mutex
	cards     []EventCard
	reminders []Reminder
	notices   []string
	deleted   []string

	cardErr     error
	reminderErr error
	nextID      int
}

func (f *fakeMessenger) SendEventCard(_ context.Context, _ string, card EventCard) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cardErr != nil {
		return "", f.cardErr
	}
	f.cards = append(f.cards, card)
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeMessenger) SendReminder(_ context.Context, _ string, r Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reminderErr != nil {
		return f.reminderErr
	}
	f.reminders = append(f.reminders, r)
	return nil
}

func (f *fakeMessenger) SendAdminNotice(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, text)
	return nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _ string, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultTimezone:      "UTC",
		GuildFanOut:          1,
		APITimeout:           5 * time.Second,
		MessageRetentionDays: 7,
		GuildRetentionDays:   90,
	}
}

func newTestScheduler(t *testing.T) (*Scheduler, *storage.Storage, *fakeMessenger) {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	msg := &fakeMessenger{}
	s := New(store, msg, testConfig())
	return s, store, msg
}

// thisMonday returns the current week's Monday at the given clock time, UTC.
// Schedule rows written during the test carry a fresh updated_at, so they are
// never stale relative to this instant.
func thisMonday(clock string) time.Time {
	week := util.WeekStart(time.Now().UTC())
	h, m, _ := util.ParseClock(clock)
	return week.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func setupGuild(t *testing.T, store *storage.Storage, guildID string, mutate func(*storage.GuildSettings)) {
	t.Helper()
	require.NoError(t, store.UpdateSettings(guildID, func(gs *storage.GuildSettings) {
		gs.EventChannelID = "event-chan"
		gs.AdminChannelID = "admin-chan"
		gs.Timezone = "UTC"
		if mutate != nil {
			mutate(gs)
		}
	}))
}

func fixClock(s *Scheduler, at time.Time) {
	s.now = func() time.Time { return at }
}

func TestPostingCreatesExactlyOneCard(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "Combat Gear", "Tank"))

	at := thisMonday("09:01")
	fixClock(s, at)

	s.PostingTick(context.Background())
	require.Len(t, msg.cards, 1)
	assert.Equal(t, "Raid Night", msg.cards[0].EventName)
	assert.Equal(t, "Combat Gear", msg.cards[0].Outfit)
	assert.Equal(t, "Tank", msg.cards[0].Vehicle)
	assert.Equal(t, util.DateString(at), msg.cards[0].EventDate)

	post, err := store.DailyPostForDate("g1", util.DateString(at))
	require.NoError(t, err)
	assert.Equal(t, "msg-1", post.MessageID)
	assert.Equal(t, "Raid Night", post.EventName)

	// Re-running the tick after the trigger instant must not double-post.
	s.PostingTick(context.Background())
	fixClock(s, at.Add(time.Hour))
	s.PostingTick(context.Background())
	assert.Len(t, msg.cards, 1)
}

func TestPostingWaitsForPostingTime(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))

	fixClock(s, thisMonday("08:59"))
	s.PostingTick(context.Background())
	assert.Empty(t, msg.cards)
}

func TestPostingSkipsWithoutChannel(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", func(gs *storage.GuildSettings) { gs.EventChannelID = "" })
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))

	fixClock(s, thisMonday("09:01"))
	s.PostingTick(context.Background())
	assert.Empty(t, msg.cards)
	assert.Empty(t, msg.notices)
}

func TestPostingMissingScheduleNotifiesOncePerDay(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)

	fixClock(s, thisMonday("09:01"))
	s.PostingTick(context.Background())
	s.PostingTick(context.Background())

	assert.Empty(t, msg.cards)
	require.Len(t, msg.notices, 1, "admin notice is capped at one per day")
	assert.Contains(t, msg.notices[0], "No schedule entry")
}

func TestPostingStaleScheduleBlocksCard(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))

	// Two weeks on, the entry written above predates the current week.
	at := thisMonday("09:01").AddDate(0, 0, 14)
	fixClock(s, at)

	s.PostingTick(context.Background())
	assert.Empty(t, msg.cards)
	require.Len(t, msg.notices, 1)
	assert.Contains(t, msg.notices[0], "last updated before this week")

	_, err := store.DailyPostForDate("g1", util.DateString(at))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostingSendFailureRetriesNextTick(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))

	at := thisMonday("09:01")
	fixClock(s, at)

	msg.cardErr = errors.New("discord down")
	s.PostingTick(context.Background())
	_, err := store.DailyPostForDate("g1", util.DateString(at))
	assert.ErrorIs(t, err, storage.ErrNotFound, "no ledger row without a sent message")

	msg.cardErr = nil
	s.PostingTick(context.Background())
	assert.Len(t, msg.cards, 1)
	_, err = store.DailyPostForDate("g1", util.DateString(at))
	assert.NoError(t, err)
}

func TestPostingPermissionDeniedGoesToAdminChannel(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))

	fixClock(s, thisMonday("09:01"))
	msg.cardErr = fmt.Errorf("send: %w", ErrPermission)
	s.PostingTick(context.Background())

	assert.Empty(t, msg.cards)
	require.Len(t, msg.notices, 1)
	assert.Contains(t, msg.notices[0], "can't send messages")
}

func TestManualPostForceReplacesCard(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))

	at := thisMonday("10:00")
	fixClock(s, at)

	require.NoError(t, s.ManualPost(context.Background(), "g1", false))
	first, err := store.DailyPostForDate("g1", util.DateString(at))
	require.NoError(t, err)

	assert.ErrorIs(t, s.ManualPost(context.Background(), "g1", false), ErrAlreadyPosted)

	require.NoError(t, s.ManualPost(context.Background(), "g1", true))
	second, err := store.DailyPostForDate("g1", util.DateString(at))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Contains(t, msg.deleted, first.MessageID, "forced repost deletes the old message")
}

func setupReminderGuild(t *testing.T, s *Scheduler, store *storage.Storage) time.Time {
	t.Helper()
	setupGuild(t, store, "g1", func(gs *storage.GuildSettings) {
		gs.EventTime = "20:00"
		gs.ReminderEnabled = true
		gs.Reminder1H = true
	})
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "Combat Gear", "Tank"))

	at := thisMonday("09:01")
	fixClock(s, at)
	s.PostingTick(context.Background())
	return at
}

func TestReminderFiresOnceAfterTrigger(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	day := setupReminderGuild(t, s, store)

	// 18:59 — one minute before the 1-hour trigger.
	fixClock(s, day.Add(9*time.Hour+58*time.Minute))
	s.ReminderTick(context.Background())
	assert.Empty(t, msg.reminders)

	// 19:00 — trigger instant reached.
	fixClock(s, day.Add(9*time.Hour+59*time.Minute))
	s.ReminderTick(context.Background())
	require.Len(t, msg.reminders, 1)
	assert.Equal(t, storage.Reminder1Hour, msg.reminders[0].Type)
	assert.Equal(t, "Combat Gear", msg.reminders[0].Outfit)

	// 19:30 — already sent, must not repeat no matter how often the tick runs.
	fixClock(s, day.Add(10*time.Hour+29*time.Minute))
	for i := 0; i < 5; i++ {
		s.ReminderTick(context.Background())
	}
	assert.Len(t, msg.reminders, 1)
}

func TestReminderSkippedWithoutPost(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", func(gs *storage.GuildSettings) {
		gs.EventTime = "20:00"
		gs.ReminderEnabled = true
		gs.Reminder1H = true
		gs.AutoDailyPosts = false
	})

	fixClock(s, thisMonday("19:30"))
	s.ReminderTick(context.Background())
	assert.Empty(t, msg.reminders, "no reminder for a day with no posted card")
}

func TestReminderSendFailureRetries(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	day := setupReminderGuild(t, s, store)

	fixClock(s, day.Add(10*time.Hour+9*time.Minute))
	msg.reminderErr = errors.New("rate limited")
	s.ReminderTick(context.Background())
	assert.Empty(t, msg.reminders)

	msg.reminderErr = nil
	s.ReminderTick(context.Background())
	assert.Len(t, msg.reminders, 1, "failed send leaves no ledger row, next tick retries")
}

func TestReminderTypesAreIndependent(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", func(gs *storage.GuildSettings) {
		gs.EventTime = "20:00"
		gs.ReminderEnabled = true
		gs.Reminder4PM = true
		gs.Reminder1H = true
		gs.Reminder15M = true
	})
	require.NoError(t, store.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))

	day := thisMonday("09:01")
	fixClock(s, day)
	s.PostingTick(context.Background())

	// 16:30: only the 4pm reminder is due.
	fixClock(s, day.Add(7*time.Hour+29*time.Minute))
	s.ReminderTick(context.Background())
	require.Len(t, msg.reminders, 1)
	assert.Equal(t, storage.Reminder4PM, msg.reminders[0].Type)

	// 19:50: the 1-hour and 15-minute reminders are due; 4pm stays sent.
	fixClock(s, day.Add(10*time.Hour+49*time.Minute))
	s.ReminderTick(context.Background())
	require.Len(t, msg.reminders, 3)
	kinds := []string{msg.reminders[1].Type, msg.reminders[2].Type}
	assert.ElementsMatch(t, []string{storage.Reminder1Hour, storage.Reminder15Min}, kinds)
}

func TestTriggerRemindersBypassesClockNotLedger(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	day := setupReminderGuild(t, s, store)

	// Morning, long before any trigger instant.
	fixClock(s, day.Add(time.Hour))
	require.NoError(t, s.TriggerReminders(context.Background(), "g1", true))
	assert.Len(t, msg.reminders, 1)

	require.NoError(t, s.TriggerReminders(context.Background(), "g1", true))
	assert.Len(t, msg.reminders, 1, "dedup ledger still applies under forced evaluation")
}

func TestCleanupClearsOldMessagesAndStaleGuilds(t *testing.T) {
	s, store, msg := newTestScheduler(t)
	setupGuild(t, store, "g1", nil)

	old := &storage.DailyPost{
		ID: "old-post", GuildID: "g1", EventDate: "2020-01-01",
		ChannelID: "event-chan", MessageID: "msg-old", Weekday: "wednesday",
		EventName: "Ancient Event",
	}
	require.NoError(t, store.CreateDailyPost(old))
	require.NoError(t, store.PutSetupState("g1", 3, s.now().Add(-time.Hour)))

	fixClock(s, time.Now().UTC())
	s.CleanupTick(context.Background())

	assert.Contains(t, msg.deleted, "msg-old")
	p, err := store.PostByID("old-post")
	require.NoError(t, err)
	assert.Empty(t, p.MessageID, "ledger row survives message cleanup")

	_, err = store.SetupStateFor("g1", s.now())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A retention window in the past makes every guild stale.
	s.cfg.GuildRetentionDays = -1
	s.CleanupTick(context.Background())
	_, err = store.Settings("g1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
