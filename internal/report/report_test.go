package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

func newTestReporter(t *testing.T, members MemberCounter) (*Reporter, *storage.Storage, time.Time) {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.UpdateSettings("g1", func(gs *storage.GuildSettings) {
		gs.Timezone = "UTC"
	}))

	r := New(store, members)
	// Wednesday noon of the current week.
	now := util.WeekStart(time.Now().UTC()).AddDate(0, 0, 2).Add(12 * time.Hour)
	r.now = func() time.Time { return now }
	return r, store, now
}

func addPost(t *testing.T, store *storage.Storage, id string, day time.Time, event string) {
	t.Helper()
	require.NoError(t, store.CreateDailyPost(&storage.DailyPost{
		ID: id, GuildID: "g1", EventDate: util.DateString(day),
		ChannelID: "c1", MessageID: "m-" + id,
		Weekday: util.WeekdayName(day), EventName: event,
	}))
}

func TestTodayCountsFullSetDisplayTruncates(t *testing.T) {
	r, store, now := newTestReporter(t, nil)
	addPost(t, store, "p-wed", now, "Convoy")

	for i := 0; i < 37; i++ {
		require.NoError(t, store.UpsertRsvp("p-wed", "g1",
			fmt.Sprintf("user-%02d", i), storage.ResponseYes, now))
	}

	sum, err := r.Build("g1", PeriodToday)
	require.NoError(t, err)

	assert.Equal(t, 37, sum.Yes)
	require.Len(t, sum.Days, 1)
	assert.True(t, sum.Days[0].Posted)
	assert.Equal(t, 37, len(sum.Days[0].Yes))
	assert.Equal(t, 37, sum.Days[0].Attending())

	shown := TruncateNames(sum.Days[0].Yes)
	require.Len(t, shown, DisplayLimit+1)
	assert.Equal(t, "and 27 more", shown[DisplayLimit])
}

func TestWeeklyConsistentAttendees(t *testing.T) {
	r, store, now := newTestReporter(t, nil)
	monday := util.WeekStart(now)
	tuesday := monday.AddDate(0, 0, 1)

	addPost(t, store, "p-mon", monday, "Raid")
	addPost(t, store, "p-tue", tuesday, "Heist")

	// alice attends both days, one of them from mobile. bob attends one and
	// waffles on the other. carol only ever says no.
	require.NoError(t, store.UpsertRsvp("p-mon", "g1", "alice", storage.ResponseYes, now))
	require.NoError(t, store.UpsertRsvp("p-tue", "g1", "alice", storage.ResponseMobile, now))
	require.NoError(t, store.UpsertRsvp("p-mon", "g1", "bob", storage.ResponseYes, now))
	require.NoError(t, store.UpsertRsvp("p-tue", "g1", "bob", storage.ResponseMaybe, now))
	require.NoError(t, store.UpsertRsvp("p-mon", "g1", "carol", storage.ResponseNo, now))

	sum, err := r.Build("g1", PeriodWeekly)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.PostedDays())
	assert.Equal(t, []string{"alice"}, sum.ConsistentAttendees)
	assert.Equal(t, 2, sum.Yes)
	assert.Equal(t, 1, sum.Mobile)
	assert.Equal(t, 1, sum.Maybe)
	assert.Equal(t, 1, sum.No)
	assert.Equal(t, 3, sum.DistinctResponders)
}

func TestMidweekRangeAndUnpostedDays(t *testing.T) {
	r, store, now := newTestReporter(t, nil)
	monday := util.WeekStart(now)

	addPost(t, store, "p-mon", monday, "Raid")
	// Sunday's post must not leak into the Monday-Wednesday window.
	addPost(t, store, "p-sun", monday.AddDate(0, 0, 6), "Finale")
	require.NoError(t, store.UpsertRsvp("p-sun", "g1", "alice", storage.ResponseYes, now))

	sum, err := r.Build("g1", PeriodMidweek)
	require.NoError(t, err)

	require.Len(t, sum.Days, 3)
	assert.True(t, sum.Days[0].Posted)
	assert.False(t, sum.Days[1].Posted, "no card on tuesday")
	assert.Equal(t, 0, sum.Days[0].Responses(), "posted day with zero responses")
	assert.Equal(t, 0, sum.Yes)
}

func TestYesterdayEmptyWeekIsDistinctFromNoResponses(t *testing.T) {
	r, _, _ := newTestReporter(t, nil)

	sum, err := r.Build("g1", PeriodYesterday)
	require.NoError(t, err)
	require.Len(t, sum.Days, 1)
	assert.False(t, sum.Days[0].Posted)
	assert.Equal(t, 0, sum.DistinctResponders)
}

func TestParticipationRateUsesMemberCount(t *testing.T) {
	counter := func(string) (int, error) { return 20, nil }
	r, store, now := newTestReporter(t, counter)
	addPost(t, store, "p-wed", now, "Convoy")

	require.NoError(t, store.UpsertRsvp("p-wed", "g1", "alice", storage.ResponseYes, now))
	require.NoError(t, store.UpsertRsvp("p-wed", "g1", "bob", storage.ResponseNo, now))

	sum, err := r.Build("g1", PeriodToday)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, sum.ParticipationRate(), 1e-9)

	sum2, err := New(store, nil).Build("g1", PeriodToday)
	require.NoError(t, err)
	assert.Zero(t, sum2.ParticipationRate())
}
