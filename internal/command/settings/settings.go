// Package settings implements the /settings command for per-guild
// configuration: channels, times, timezone, reminder toggles and auto-posting.
package settings

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

type SettingsCommand struct{}

func (c *SettingsCommand) Name() string        { return "settings" }
func (c *SettingsCommand) Description() string { return "Configure the bot for this server" }
func (c *SettingsCommand) Aliases() []string   { return []string{} }
func (c *SettingsCommand) Group() string       { return "settings" }
func (c *SettingsCommand) Category() string    { return "⚙️ Configuration" }
func (c *SettingsCommand) RequireAdmin() bool  { return true }
func (c *SettingsCommand) RequireDev() bool    { return false }

func (c *SettingsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	channelOption := func(name, desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         name,
			Description:  desc,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		}
	}
	boolOption := func(name, desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        name,
			Description: desc,
		}
	}

	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "channels",
				Description: "Set the event and admin channels",
				Options: []*discordgo.ApplicationCommandOption{
					channelOption("event_channel", "Where event cards and reminders are posted"),
					channelOption("admin_channel", "Where admin notices go"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "times",
				Description: "Set event and posting times (HH:MM, 24-hour)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "event_time",
						Description: "Daily event start, e.g. 20:00",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "posting_time",
						Description: "When the daily card is posted, e.g. 09:00",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "timezone",
				Description: "Set the server timezone (IANA name)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "zone",
						Description: "e.g. America/New_York or Europe/Berlin",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reminders",
				Description: "Toggle reminders and individual reminder types",
				Options: []*discordgo.ApplicationCommandOption{
					boolOption("enabled", "Master switch for all reminders"),
					boolOption("afternoon", "Heads-up at 4 PM"),
					boolOption("one_hour", "One hour before the event"),
					boolOption("fifteen_minutes", "15 minutes before the event"),
					boolOption("five_minutes", "5 minutes before the event"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "autopost",
				Description: "Toggle automatic daily event cards",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "enabled",
						Description: "Post the daily card automatically",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "view",
				Description: "Show the current configuration",
			},
		},
	}
}

func (c *SettingsCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	opts := slash.Event.ApplicationCommandData().Options
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Pick a subcommand.")
	}
	sub := opts[0]

	switch sub.Name {
	case "channels":
		return c.runChannels(slash, sub.Options)
	case "times":
		return c.runTimes(slash, sub.Options)
	case "timezone":
		return c.runTimezone(slash, sub.Options)
	case "reminders":
		return c.runReminders(slash, sub.Options)
	case "autopost":
		return c.runAutopost(slash, sub.Options)
	case "view":
		return c.runView(slash)
	default:
		return core.RespondEphemeral(slash.Session, slash.Event, "Unknown subcommand.")
	}
}

func (c *SettingsCommand) runChannels(slash *core.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Give at least one channel to set.")
	}
	var eventChannelID string
	err := slash.Deps.Storage.UpdateSettings(slash.Event.GuildID, func(gs *storage.GuildSettings) {
		for _, o := range opts {
			ch := o.ChannelValue(slash.Session)
			if ch == nil {
				continue
			}
			switch o.Name {
			case "event_channel":
				gs.EventChannelID = ch.ID
				eventChannelID = ch.ID
			case "admin_channel":
				gs.AdminChannelID = ch.ID
			}
		}
	})
	if err != nil {
		return err
	}
	msg := "Channels updated. ✅"
	if eventChannelID != "" && !core.CheckBotPermissions(slash.Session, eventChannelID) {
		msg += "\n⚠️ I can't send messages or embeds in that event channel yet. Grant me **Send Messages** and **Embed Links** there or the daily cards will fail."
	}
	return core.RespondEphemeral(slash.Session, slash.Event, msg)
}

func (c *SettingsCommand) runTimes(slash *core.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Give at least one time to set.")
	}
	for _, o := range opts {
		if _, _, err := util.ParseClock(o.StringValue()); err != nil {
			return core.RespondEphemeral(slash.Session, slash.Event,
				fmt.Sprintf("%q is not a valid time. Use 24-hour HH:MM, e.g. `20:00`.", o.StringValue()))
		}
	}
	err := slash.Deps.Storage.UpdateSettings(slash.Event.GuildID, func(gs *storage.GuildSettings) {
		for _, o := range opts {
			switch o.Name {
			case "event_time":
				gs.EventTime = o.StringValue()
			case "posting_time":
				gs.PostingTime = o.StringValue()
			}
		}
	})
	if err != nil {
		return err
	}
	return core.RespondEphemeral(slash.Session, slash.Event, "Times updated. ✅")
}

func (c *SettingsCommand) runTimezone(slash *core.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	var zone string
	for _, o := range opts {
		if o.Name == "zone" {
			zone = o.StringValue()
		}
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return core.RespondEphemeral(slash.Session, slash.Event,
			fmt.Sprintf("%q is not a known timezone. Use an IANA name like `America/New_York`.", zone))
	}
	err := slash.Deps.Storage.UpdateSettings(slash.Event.GuildID, func(gs *storage.GuildSettings) {
		gs.Timezone = zone
	})
	if err != nil {
		return err
	}
	return core.RespondEphemeral(slash.Session, slash.Event,
		fmt.Sprintf("Timezone set to **%s**. ✅", zone))
}

func (c *SettingsCommand) runReminders(slash *core.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Give at least one toggle to change.")
	}
	err := slash.Deps.Storage.UpdateSettings(slash.Event.GuildID, func(gs *storage.GuildSettings) {
		for _, o := range opts {
			v := o.BoolValue()
			switch o.Name {
			case "enabled":
				gs.ReminderEnabled = v
			case "afternoon":
				gs.Reminder4PM = v
			case "one_hour":
				gs.Reminder1H = v
			case "fifteen_minutes":
				gs.Reminder15M = v
			case "five_minutes":
				gs.Reminder5M = v
			}
		}
	})
	if err != nil {
		return err
	}
	return core.RespondEphemeral(slash.Session, slash.Event, "Reminder settings updated. ✅")
}

func (c *SettingsCommand) runAutopost(slash *core.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	var enabled bool
	for _, o := range opts {
		if o.Name == "enabled" {
			enabled = o.BoolValue()
		}
	}
	err := slash.Deps.Storage.UpdateSettings(slash.Event.GuildID, func(gs *storage.GuildSettings) {
		gs.AutoDailyPosts = enabled
	})
	if err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return core.RespondEphemeral(slash.Session, slash.Event,
		fmt.Sprintf("Automatic daily posts **%s**. ✅", state))
}

func (c *SettingsCommand) runView(slash *core.SlashInteractionContext) error {
	gs, err := slash.Deps.Storage.Settings(slash.Event.GuildID)
	if err != nil {
		return core.RespondEphemeral(slash.Session, slash.Event,
			"Nothing configured yet. Start with `/settings channels`.")
	}

	channel := func(id string) string {
		if id == "" {
			return "not set"
		}
		return "<#" + id + ">"
	}
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Server Configuration",
		Color: core.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Event channel", Value: channel(gs.EventChannelID), Inline: true},
			{Name: "Admin channel", Value: channel(gs.AdminChannelID), Inline: true},
			{Name: "Timezone", Value: gs.Timezone, Inline: true},
			{Name: "Event time", Value: gs.EventTime, Inline: true},
			{Name: "Posting time", Value: gs.PostingTime, Inline: true},
			{Name: "Auto daily posts", Value: onOff(gs.AutoDailyPosts), Inline: true},
			{
				Name: "Reminders",
				Value: fmt.Sprintf("master %s · 4pm %s · 1h %s · 15m %s · 5m %s",
					onOff(gs.ReminderEnabled), onOff(gs.Reminder4PM), onOff(gs.Reminder1H),
					onOff(gs.Reminder15M), onOff(gs.Reminder5M)),
			},
		},
	}
	return core.RespondEmbedEphemeral(slash.Session, slash.Event, embed)
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&SettingsCommand{},
		core.WithCommandLogger(),
		core.WithAdminCheck(),
		core.WithGuildOnly(),
	))
}
