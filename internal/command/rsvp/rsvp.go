// Package rsvp handles the event card buttons and the /rsvps breakdown.
package rsvp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/discord"
	"github.com/musterbot/muster/internal/report"
	"github.com/musterbot/muster/internal/storage"
)

type RsvpCommand struct{}

func (c *RsvpCommand) Name() string        { return "rsvps" }
func (c *RsvpCommand) Description() string { return "Show who has responded to today's event" }
func (c *RsvpCommand) Aliases() []string   { return []string{} }
func (c *RsvpCommand) Group() string       { return "rsvp" }
func (c *RsvpCommand) Category() string    { return "📅 Scheduling" }
func (c *RsvpCommand) RequireAdmin() bool  { return false }
func (c *RsvpCommand) RequireDev() bool    { return false }

func (c *RsvpCommand) ComponentPrefix() string { return discord.RsvpPrefix }

func (c *RsvpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

var confirmations = map[string]string{
	storage.ResponseYes:    "You're marked as **attending**. ✅",
	storage.ResponseNo:     "You're marked as **not attending**. ❌",
	storage.ResponseMaybe:  "You're marked as **maybe**. ❔",
	storage.ResponseMobile: "You're marked as **attending on mobile**. 📱",
}

// Component records a button press. Pressing another button later just
// overwrites the previous answer.
func (c *RsvpCommand) Component(ctx *core.ComponentInteractionContext) error {
	customID := ctx.Event.MessageComponentData().CustomID
	responseType, postID, ok := discord.ParseRsvpCustomID(customID)
	if !ok {
		return nil
	}

	post, err := ctx.Deps.Storage.PostByID(postID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.RespondEphemeral(ctx.Session, ctx.Event,
			"This event card has expired.")
	} else if err != nil {
		return err
	}
	if post.GuildID != ctx.Event.GuildID {
		return nil
	}

	userID := core.InteractionUserID(ctx.Event)
	if userID == "" {
		return nil
	}
	if err := ctx.Deps.Storage.UpsertRsvp(post.ID, post.GuildID, userID, responseType, time.Now().UTC()); err != nil {
		return err
	}
	return core.RespondEphemeral(ctx.Session, ctx.Event, confirmations[responseType])
}

// Run renders today's breakdown for /rsvps.
func (c *RsvpCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	sum, err := slash.Deps.Reporter.Build(slash.Event.GuildID, report.PeriodToday)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.RespondEphemeral(slash.Session, slash.Event,
				"Nothing configured yet. Start with `/settings channels`.")
		}
		return err
	}

	day := sum.Days[0]
	if !day.Posted {
		return core.RespondEphemeral(slash.Session, slash.Event,
			"No event card has been posted today.")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("RSVPs for %s", day.EventName),
		Color: core.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			bucketField("✅ Attending", day.Yes),
			bucketField("📱 On Mobile", day.Mobile),
			bucketField("❔ Maybe", day.Maybe),
			bucketField("❌ Not Attending", day.No),
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d responses · %s", day.Responses(), day.Date),
		},
	}
	return core.RespondEmbedEphemeral(slash.Session, slash.Event, embed)
}

func bucketField(name string, userIDs []string) *discordgo.MessageEmbedField {
	value := "—"
	if len(userIDs) > 0 {
		value = strings.Join(mentions(report.TruncateNames(userIDs)), " ")
	}
	return &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("%s (%d)", name, len(userIDs)),
		Value: value,
	}
}

// mentions turns user IDs into mention markup, leaving the truncation marker
// as plain text.
func mentions(entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		if strings.HasPrefix(e, "and ") {
			out[i] = e
			continue
		}
		out[i] = "<@" + e + ">"
	}
	return out
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&RsvpCommand{},
		core.WithCommandLogger(),
		core.WithGuildOnly(),
	))
}
