package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestPost(t *testing.T, s *Storage, guildID, date string) *DailyPost {
	t.Helper()
	post := &DailyPost{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		EventDate: date,
		ChannelID: "chan-1",
		MessageID: "msg-1",
		Weekday:   "monday",
		EventName: "Raid Night",
		Outfit:    "Combat Gear",
		Vehicle:   "Tank",
	}
	require.NoError(t, s.CreateDailyPost(post))
	return post
}

func TestDailyPostUniquePerGuildDate(t *testing.T) {
	s := newTestStorage(t)
	newTestPost(t, s, "g1", "2025-03-03")

	dup := &DailyPost{
		ID:        uuid.NewString(),
		GuildID:   "g1",
		EventDate: "2025-03-03",
		ChannelID: "chan-1",
		Weekday:   "monday",
		EventName: "Raid Night",
	}
	err := s.CreateDailyPost(dup)
	require.Error(t, err)
	assert.True(t, IsDuplicate(err), "second insert for the same (guild, date) must hit the unique index")

	// A different date is fine.
	newTestPost(t, s, "g1", "2025-03-04")
}

func TestRsvpUpsertLatestWins(t *testing.T) {
	s := newTestStorage(t)
	post := newTestPost(t, s, "g1", "2025-03-03")

	base := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertRsvp(post.ID, "g1", "user-a", ResponseYes, base))
	require.NoError(t, s.UpsertRsvp(post.ID, "g1", "user-a", ResponseMaybe, base.Add(time.Minute)))
	require.NoError(t, s.UpsertRsvp(post.ID, "g1", "user-a", ResponseYes, base.Add(2*time.Minute)))

	rows, err := s.RsvpsForPost(post.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "upsert must not accumulate history")
	assert.Equal(t, ResponseYes, rows[0].ResponseType)
	assert.Equal(t, "user-a", rows[0].UserID)
}

func TestRsvpRejectsUnknownType(t *testing.T) {
	s := newTestStorage(t)
	post := newTestPost(t, s, "g1", "2025-03-03")
	assert.Error(t, s.UpsertRsvp(post.ID, "g1", "user-a", "later", time.Now()))
}

func TestReminderMarkIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	post := newTestPost(t, s, "g1", "2025-03-03")

	now := time.Now().UTC()
	require.NoError(t, s.MarkReminderSent(post.ID, "g1", Reminder1Hour, "2025-03-03", now))
	// Second mark for the same (post, type) is swallowed as already-done.
	require.NoError(t, s.MarkReminderSent(post.ID, "g1", Reminder1Hour, "2025-03-03", now))

	rows, err := s.RemindersForPost(post.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	sent, err := s.ReminderAlreadySent(post.ID, Reminder1Hour)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = s.ReminderAlreadySent(post.ID, Reminder15Min)
	require.NoError(t, err)
	assert.False(t, sent, "reminder types are independent")
}

func TestNoticeCapPerDay(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now().UTC()

	require.NoError(t, s.MarkNoticeSent("g1", "2025-03-03", NoticeScheduleStale, now))
	require.NoError(t, s.MarkNoticeSent("g1", "2025-03-03", NoticeScheduleStale, now))

	sent, err := s.NoticeAlreadySent("g1", "2025-03-03", NoticeScheduleStale)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = s.NoticeAlreadySent("g1", "2025-03-04", NoticeScheduleStale)
	require.NoError(t, err)
	assert.False(t, sent, "the cap is per day")
}

func TestScheduleSaveOverwrites(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveScheduleDay("g1", "monday", "Raid Night", "Combat Gear", "Tank"))
	require.NoError(t, s.SaveScheduleDay("g1", "monday", "Race Night", "Casual", "Sports Car"))

	entry, err := s.ScheduleDay("g1", "monday")
	require.NoError(t, err)
	assert.Equal(t, "Race Night", entry.EventName)

	entries, err := s.GuildSchedule("g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Error(t, s.SaveScheduleDay("g1", "funday", "x", "y", "z"))
}

func TestScheduleOrdering(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.SaveScheduleDay("g1", "friday", "F", "", ""))
	require.NoError(t, s.SaveScheduleDay("g1", "monday", "M", "", ""))
	require.NoError(t, s.SaveScheduleDay("g1", "wednesday", "W", "", ""))

	entries, err := s.GuildSchedule("g1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"monday", "wednesday", "friday"},
		[]string{entries[0].Weekday, entries[1].Weekday, entries[2].Weekday})
}

func TestSettingsLazyCreateWithDefaults(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Settings("g1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpdateSettings("g1", func(gs *GuildSettings) {
		gs.EventChannelID = "chan-9"
	}))

	gs, err := s.Settings("g1")
	require.NoError(t, err)
	assert.Equal(t, "chan-9", gs.EventChannelID)
	assert.Equal(t, DefaultPostingTime, gs.PostingTime)
	assert.Equal(t, DefaultEventTime, gs.EventTime)
	assert.Equal(t, DefaultTimezone, gs.Timezone)
	assert.True(t, gs.AutoDailyPosts)
}

func TestSetupStateTTL(t *testing.T) {
	s := newTestStorage(t)
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.PutSetupState("g1", 2, now.Add(30*time.Minute)))

	st, err := s.SetupStateFor("g1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, st.DayIndex)

	_, err = s.SetupStateFor("g1", now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound, "expired setup state must not resume")

	require.NoError(t, s.PurgeExpiredSetupStates(now.Add(time.Hour)))
	_, err = s.SetupStateFor("g1", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDailyPostCascades(t *testing.T) {
	s := newTestStorage(t)
	post := newTestPost(t, s, "g1", "2025-03-03")

	require.NoError(t, s.UpsertRsvp(post.ID, "g1", "user-a", ResponseYes, time.Now()))
	require.NoError(t, s.MarkReminderSent(post.ID, "g1", Reminder1Hour, "2025-03-03", time.Now()))

	require.NoError(t, s.DeleteDailyPost(post.ID))

	_, err := s.PostByID(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rows, err := s.RsvpsForPost(post.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	sent, err := s.ReminderAlreadySent(post.ID, Reminder1Hour)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestPurgeGuildRemovesEverything(t *testing.T) {
	s := newTestStorage(t)
	post := newTestPost(t, s, "g1", "2025-03-03")
	require.NoError(t, s.UpsertRsvp(post.ID, "g1", "u1", ResponseYes, time.Now()))
	require.NoError(t, s.SaveScheduleDay("g1", "monday", "Raid Night", "", ""))
	require.NoError(t, s.UpdateSettings("g1", func(*GuildSettings) {}))

	keep := newTestPost(t, s, "g2", "2025-03-03")

	require.NoError(t, s.PurgeGuild("g1"))

	_, err := s.PostByID(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Settings("g1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.PostByID(keep.ID)
	assert.NoError(t, err, "other guilds are untouched")
}

func TestClearMessageRef(t *testing.T) {
	s := newTestStorage(t)
	post := newTestPost(t, s, "g1", "2025-03-01")

	stale, err := s.PostsWithMessagesBefore("2025-03-03")
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.NoError(t, s.ClearMessageRef(post.ID))

	stale, err = s.PostsWithMessagesBefore("2025-03-03")
	require.NoError(t, err)
	assert.Empty(t, stale)

	// Ledger row survives for reporting.
	p, err := s.PostByID(post.ID)
	require.NoError(t, err)
	assert.Empty(t, p.MessageID)
}

func TestSaveCommandHashesReplacesSet(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveCommandHashes("g1", map[string]string{
		"ping": "aaa", "about": "bbb",
	}))
	require.NoError(t, s.SaveCommandHashes("g1", map[string]string{
		"ping": "ccc", "status": "ddd",
	}))

	hashes, err := s.CommandHashes("g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ping": "ccc", "status": "ddd"}, hashes)
}

func TestPing(t *testing.T) {
	s := newTestStorage(t)
	assert.NoError(t, s.Ping(context.Background()))
}
