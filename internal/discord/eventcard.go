package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/scheduler"
	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

// RsvpPrefix is the custom ID prefix of the event card buttons. The full ID is
// "rsvp:<response type>:<post ID>", so a button keeps working after restarts.
const RsvpPrefix = "rsvp:"

// ParseRsvpCustomID splits a button custom ID into response type and post ID.
func ParseRsvpCustomID(customID string) (responseType, postID string, ok bool) {
	rest, found := strings.CutPrefix(customID, RsvpPrefix)
	if !found {
		return "", "", false
	}
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || !storage.ValidResponse(parts[0]) || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func rsvpCustomID(responseType, postID string) string {
	return RsvpPrefix + responseType + ":" + postID
}

func rsvpButtons(postID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "✅ Attending", Style: discordgo.SuccessButton, CustomID: rsvpCustomID(storage.ResponseYes, postID)},
				discordgo.Button{Label: "❌ Not Attending", Style: discordgo.DangerButton, CustomID: rsvpCustomID(storage.ResponseNo, postID)},
				discordgo.Button{Label: "❔ Maybe", Style: discordgo.SecondaryButton, CustomID: rsvpCustomID(storage.ResponseMaybe, postID)},
				discordgo.Button{Label: "📱 On Mobile", Style: discordgo.PrimaryButton, CustomID: rsvpCustomID(storage.ResponseMobile, postID)},
			},
		},
	}
}

func eventCardEmbed(card scheduler.EventCard) *discordgo.MessageEmbed {
	title := fmt.Sprintf("%s: %s", titleWeekday(card.Weekday), card.EventName)

	fields := []*discordgo.MessageEmbedField{
		{Name: "🕗 Event Time", Value: formatEventTime(card.EventTime, card.Timezone), Inline: true},
	}
	if card.Outfit != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "👔 Outfit", Value: card.Outfit, Inline: true,
		})
	}
	if card.Vehicle != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "🚗 Vehicle", Value: card.Vehicle, Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: "React below to let everyone know whether you're coming.",
		Color:       core.EmbedColor,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: card.EventDate},
	}
}

// reminderMessage builds the reminder announcement. Reminders ping @everyone;
// the embed alone would sit unread in the channel.
func reminderMessage(r scheduler.Reminder) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: "@everyone",
		Embeds:  []*discordgo.MessageEmbed{reminderEmbed(r)},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone},
		},
	}
}

func reminderEmbed(r scheduler.Reminder) *discordgo.MessageEmbed {
	var lead string
	switch r.Type {
	case storage.Reminder4PM:
		lead = fmt.Sprintf("Heads up: **%s** is tonight!", r.EventName)
	case storage.Reminder1Hour:
		lead = fmt.Sprintf("**%s** starts in one hour!", r.EventName)
	case storage.Reminder15Min:
		lead = fmt.Sprintf("**%s** starts in 15 minutes!", r.EventName)
	case storage.Reminder5Min:
		lead = fmt.Sprintf("**%s** is starting in 5 minutes — get in!", r.EventName)
	default:
		lead = fmt.Sprintf("Reminder: **%s** is coming up.", r.EventName)
	}

	var details []string
	if r.Outfit != "" {
		details = append(details, "👔 "+r.Outfit)
	}
	if r.Vehicle != "" {
		details = append(details, "🚗 "+r.Vehicle)
	}

	desc := lead
	if len(details) > 0 {
		desc += "\n" + strings.Join(details, "  ·  ")
	}

	return &discordgo.MessageEmbed{
		Title:       "⏰ Event Reminder",
		Description: desc,
		Color:       core.EmbedColor,
	}
}

func titleWeekday(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatEventTime renders "20:00" in tz as e.g. "08:00 PM (America/New_York)".
func formatEventTime(clock, tz string) string {
	h, m, err := util.ParseClock(clock)
	if err != nil {
		return clock
	}
	t := time.Date(2000, 1, 1, h, m, 0, 0, time.UTC)
	if tz == "" {
		return util.FormatClock12(t)
	}
	return fmt.Sprintf("%s (%s)", util.FormatClock12(t), tz)
}
