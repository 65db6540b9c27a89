// Package report implements the /report attendance summaries.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/report"
	"github.com/musterbot/muster/internal/storage"
)

type ReportCommand struct{}

func (c *ReportCommand) Name() string        { return "report" }
func (c *ReportCommand) Description() string { return "Attendance reports over a day or a week" }
func (c *ReportCommand) Aliases() []string   { return []string{} }
func (c *ReportCommand) Group() string       { return "report" }
func (c *ReportCommand) Category() string    { return "📊 Reporting" }
func (c *ReportCommand) RequireAdmin() bool  { return true }
func (c *ReportCommand) RequireDev() bool    { return false }

func (c *ReportCommand) SlashDefinition() *discordgo.ApplicationCommand {
	sub := func(name, desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: desc,
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			sub("today", "Today's RSVP breakdown"),
			sub("yesterday", "Yesterday's RSVP breakdown"),
			sub("midweek", "Monday through Wednesday summary"),
			sub("weekly", "Monday through Sunday summary"),
		},
	}
}

func (c *ReportCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	opts := slash.Event.ApplicationCommandData().Options
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Pick a period.")
	}
	period := report.Period(opts[0].Name)

	sum, err := slash.Deps.Reporter.Build(slash.Event.GuildID, period)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.RespondEphemeral(slash.Session, slash.Event,
				"Nothing configured yet. Start with `/settings channels`.")
		}
		return err
	}
	return core.RespondEmbedEphemeral(slash.Session, slash.Event, summaryEmbed(sum))
}

func summaryEmbed(sum *report.Summary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Attendance — %s", sum.Period),
		Color: core.EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s to %s", sum.From, sum.To),
		},
	}

	if sum.PostedDays() == 0 {
		embed.Description = "No event cards were posted in this period."
		return embed
	}

	embed.Description = fmt.Sprintf(
		"**%d** attending · **%d** on mobile · **%d** maybe · **%d** not attending",
		sum.Yes, sum.Mobile, sum.Maybe, sum.No)

	for _, day := range sum.Days {
		if !day.Posted {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: titleWeekday(day.Weekday), Value: "*no card posted*", Inline: true,
			})
			continue
		}
		value := fmt.Sprintf("%s\n✅ %d · 📱 %d · ❔ %d · ❌ %d",
			day.EventName, len(day.Yes), len(day.Mobile), len(day.Maybe), len(day.No))
		if day.Responses() == 0 {
			value = day.EventName + "\n*no responses*"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: titleWeekday(day.Weekday), Value: value, Inline: true,
		})
	}

	if len(sum.ConsistentAttendees) > 0 {
		shown := report.TruncateNames(sum.ConsistentAttendees)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("🏆 Attended every event (%d)", len(sum.ConsistentAttendees)),
			Value: strings.Join(mentions(shown), " "),
		})
	}

	stats := fmt.Sprintf("%d distinct responders", sum.DistinctResponders)
	if rate := sum.ParticipationRate(); rate > 0 {
		stats += fmt.Sprintf(" · %.0f%% of members", rate*100)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Participation", Value: stats,
	})
	return embed
}

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

func titleWeekday(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&ReportCommand{},
		core.WithCommandLogger(),
		core.WithAdminCheck(),
		core.WithGuildOnly(),
	))
}
