// Package schedule implements the /schedule command: a stepwise modal flow
// that fills the weekly event schedule one day at a time, plus single-day
// edits and a read-only view.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/storage"
)

// setupTTL is how long an in-progress setup survives between steps.
const setupTTL = 30 * time.Minute

type ScheduleCommand struct{}

func (c *ScheduleCommand) Name() string        { return "schedule" }
func (c *ScheduleCommand) Description() string { return "Manage the weekly event schedule" }
func (c *ScheduleCommand) Aliases() []string   { return []string{} }
func (c *ScheduleCommand) Group() string       { return "schedule" }
func (c *ScheduleCommand) Category() string    { return "📅 Scheduling" }
func (c *ScheduleCommand) RequireAdmin() bool  { return true }
func (c *ScheduleCommand) RequireDev() bool    { return false }

func (c *ScheduleCommand) ComponentPrefix() string { return "schedule:" }
func (c *ScheduleCommand) ModalPrefix() string     { return "schedule:day:" }

func weekdayChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(storage.Weekdays))
	for _, d := range storage.Weekdays {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name: titleWeekday(d), Value: d,
		})
	}
	return choices
}

func (c *ScheduleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "setup",
				Description: "Fill the whole week, one day at a time",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "edit",
				Description: "Edit a single day",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "day",
						Description: "Which day to edit",
						Required:    true,
						Choices:     weekdayChoices(),
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "view",
				Description: "Show the current weekly schedule",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "clear-setup",
				Description: "Abandon an in-progress setup",
			},
		},
	}
}

func (c *ScheduleCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	opts := slash.Event.ApplicationCommandData().Options
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Pick a subcommand.")
	}

	switch opts[0].Name {
	case "setup":
		return c.runSetup(slash)
	case "edit":
		return c.runEdit(slash, opts[0].Options)
	case "view":
		return c.runView(slash)
	case "clear-setup":
		return c.runClearSetup(slash)
	default:
		return core.RespondEphemeral(slash.Session, slash.Event, "Unknown subcommand.")
	}
}

func (c *ScheduleCommand) runSetup(slash *core.SlashInteractionContext) error {
	guildID := slash.Event.GuildID
	if err := slash.Deps.Storage.PutSetupState(guildID, 0, time.Now().UTC().Add(setupTTL)); err != nil {
		return err
	}
	return core.RespondModal(slash.Session, slash.Event,
		dayModal(slash.Deps.Storage, guildID, 0))
}

func (c *ScheduleCommand) runEdit(slash *core.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	var day string
	for _, o := range opts {
		if o.Name == "day" {
			day = o.StringValue()
		}
	}
	idx := weekdayIndex(day)
	if idx < 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Unknown weekday.")
	}
	return core.RespondModal(slash.Session, slash.Event,
		dayModal(slash.Deps.Storage, slash.Event.GuildID, idx))
}

func (c *ScheduleCommand) runView(slash *core.SlashInteractionContext) error {
	entries, err := slash.Deps.Storage.GuildSchedule(slash.Event.GuildID)
	if err != nil {
		return err
	}
	byDay := make(map[string]storage.ScheduleEntry, len(entries))
	for _, e := range entries {
		byDay[e.Weekday] = e
	}

	var fields []*discordgo.MessageEmbedField
	for _, day := range storage.Weekdays {
		value := "—"
		if e, ok := byDay[day]; ok {
			value = e.EventName
			var extra []string
			if e.Outfit != "" {
				extra = append(extra, "👔 "+e.Outfit)
			}
			if e.Vehicle != "" {
				extra = append(extra, "🚗 "+e.Vehicle)
			}
			if len(extra) > 0 {
				value += "\n" + strings.Join(extra, "  ·  ")
			}
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: titleWeekday(day), Value: value, Inline: true,
		})
	}

	return core.RespondEmbedEphemeral(slash.Session, slash.Event, &discordgo.MessageEmbed{
		Title:  "📅 Weekly Schedule",
		Color:  core.EmbedColor,
		Fields: fields,
	})
}

func (c *ScheduleCommand) runClearSetup(slash *core.SlashInteractionContext) error {
	if err := slash.Deps.Storage.ClearSetupState(slash.Event.GuildID); err != nil {
		return err
	}
	return core.RespondEphemeral(slash.Session, slash.Event, "Setup progress cleared.")
}

func weekdayIndex(day string) int {
	for i, d := range storage.Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

func titleWeekday(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// activeSetup returns the guild's live setup state, or nil when none exists.
func activeSetup(deps *core.Deps, guildID string) *storage.SetupState {
	st, err := deps.Storage.SetupStateFor(guildID, time.Now().UTC())
	if err != nil {
		return nil
	}
	return st
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&ScheduleCommand{},
		core.WithCommandLogger(),
		core.WithAdminCheck(),
		core.WithGuildOnly(),
	))
}
