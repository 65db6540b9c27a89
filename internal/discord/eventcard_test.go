package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterbot/muster/internal/scheduler"
	"github.com/musterbot/muster/internal/storage"
)

func TestReminderMessagePingsEveryone(t *testing.T) {
	msg := reminderMessage(scheduler.Reminder{
		Type:      storage.Reminder1Hour,
		EventName: "Raid Night",
		Outfit:    "Combat Gear",
	})

	assert.Equal(t, "@everyone", msg.Content)
	require.NotNil(t, msg.AllowedMentions)
	assert.Contains(t, msg.AllowedMentions.Parse, discordgo.AllowedMentionTypeEveryone)

	require.Len(t, msg.Embeds, 1)
	assert.Contains(t, msg.Embeds[0].Description, "Raid Night")
	assert.Contains(t, msg.Embeds[0].Description, "Combat Gear")
}

func TestParseRsvpCustomID(t *testing.T) {
	responseType, postID, ok := ParseRsvpCustomID("rsvp:yes:post-1")
	require.True(t, ok)
	assert.Equal(t, storage.ResponseYes, responseType)
	assert.Equal(t, "post-1", postID)

	for _, bad := range []string{"rsvp:shrug:post-1", "rsvp:yes:", "schedule:next:1", "rsvp:yes"} {
		_, _, ok := ParseRsvpCustomID(bad)
		assert.False(t, ok, bad)
	}
}
