// Package remind implements /remind: on-demand reminder evaluation.
package remind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/storage"
)

type RemindCommand struct{}

func (c *RemindCommand) Name() string        { return "remind" }
func (c *RemindCommand) Description() string { return "Run the reminder checks for this server" }
func (c *RemindCommand) Aliases() []string   { return []string{} }
func (c *RemindCommand) Group() string       { return "remind" }
func (c *RemindCommand) Category() string    { return "📅 Scheduling" }
func (c *RemindCommand) RequireAdmin() bool  { return true }
func (c *RemindCommand) RequireDev() bool    { return false }

func (c *RemindCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "run",
				Description: "Evaluate reminders now, respecting their trigger times",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "test",
				Description: "Evaluate reminders now, ignoring trigger times",
			},
		},
	}
}

func (c *RemindCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	opts := slash.Event.ApplicationCommandData().Options
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Pick a subcommand.")
	}
	ignoreClock := opts[0].Name == "test"

	if err := core.DeferEphemeral(slash.Session, slash.Event); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := slash.Deps.Scheduler.TriggerReminders(callCtx, slash.Event.GuildID, ignoreClock)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return core.FollowUp(slash.Session, slash.Event,
			"Nothing configured yet. Start with `/settings channels`.")
	case err != nil:
		return core.FollowUp(slash.Session, slash.Event,
			fmt.Sprintf("Reminder evaluation hit an error: %v", err))
	}

	msg := "Reminder evaluation complete. Due reminders that weren't already sent went out."
	if ignoreClock {
		msg = "Test evaluation complete. Enabled reminders for today's card went out, except ones already sent."
	}
	return core.FollowUp(slash.Session, slash.Event, msg)
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&RemindCommand{},
		core.WithCommandLogger(),
		core.WithAdminCheck(),
		core.WithGuildOnly(),
	))
}
