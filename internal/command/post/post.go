// Package post implements /post: manual event card control.
package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/scheduler"
	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

type PostCommand struct{}

func (c *PostCommand) Name() string        { return "post" }
func (c *PostCommand) Description() string { return "Post or remove today's event card manually" }
func (c *PostCommand) Aliases() []string   { return []string{} }
func (c *PostCommand) Group() string       { return "post" }
func (c *PostCommand) Category() string    { return "📅 Scheduling" }
func (c *PostCommand) RequireAdmin() bool  { return true }
func (c *PostCommand) RequireDev() bool    { return false }

func (c *PostCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "now",
				Description: "Post today's event card immediately",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "force",
						Description: "Replace today's card if one already exists",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete today's event card and its RSVPs",
			},
		},
	}
}

func (c *PostCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	opts := slash.Event.ApplicationCommandData().Options
	if len(opts) == 0 {
		return core.RespondEphemeral(slash.Session, slash.Event, "Pick a subcommand.")
	}

	switch opts[0].Name {
	case "now":
		force := false
		for _, o := range opts[0].Options {
			if o.Name == "force" {
				force = o.BoolValue()
			}
		}
		return c.runNow(slash, force)
	case "delete":
		return c.runDelete(slash)
	default:
		return core.RespondEphemeral(slash.Session, slash.Event, "Unknown subcommand.")
	}
}

func (c *PostCommand) runNow(slash *core.SlashInteractionContext, force bool) error {
	if err := core.DeferEphemeral(slash.Session, slash.Event); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := slash.Deps.Scheduler.ManualPost(callCtx, slash.Event.GuildID, force)
	switch {
	case err == nil:
		return core.FollowUp(slash.Session, slash.Event, "Event card posted. ✅")
	case errors.Is(err, scheduler.ErrAlreadyPosted):
		return core.FollowUp(slash.Session, slash.Event,
			"Today's card already exists. Use `/post now force:true` to replace it.")
	case errors.Is(err, scheduler.ErrNoEventChannel):
		return core.FollowUp(slash.Session, slash.Event,
			"No event channel is configured. Set one with `/settings channels`.")
	case errors.Is(err, scheduler.ErrNoSchedule):
		return core.FollowUp(slash.Session, slash.Event,
			"There is no schedule entry for today. Add one with `/schedule edit`.")
	case errors.Is(err, scheduler.ErrStaleSchedule):
		return core.FollowUp(slash.Session, slash.Event,
			"The schedule was last updated before this week. Refresh it with `/schedule setup`.")
	case errors.Is(err, scheduler.ErrPermission):
		return core.FollowUp(slash.Session, slash.Event,
			"I can't send messages in the event channel. Check my permissions there.")
	default:
		return err
	}
}

func (c *PostCommand) runDelete(slash *core.SlashInteractionContext) error {
	store := slash.Deps.Storage
	guildID := slash.Event.GuildID

	gs, err := store.Settings(guildID)
	if err != nil {
		return core.RespondEphemeral(slash.Session, slash.Event,
			"Nothing configured yet, so there is no card to delete.")
	}

	loc, lerr := time.LoadLocation(gs.Timezone)
	if lerr != nil {
		loc = time.UTC
	}
	date := util.DateString(time.Now().In(loc))

	post, err := store.DailyPostForDate(guildID, date)
	if errors.Is(err, storage.ErrNotFound) {
		return core.RespondEphemeral(slash.Session, slash.Event, "There is no event card for today.")
	} else if err != nil {
		return err
	}

	if post.MessageID != "" {
		if derr := slash.Session.ChannelMessageDelete(post.ChannelID, post.MessageID); derr != nil {
			var rest *discordgo.RESTError
			if !errors.As(derr, &rest) || rest.Response == nil || rest.Response.StatusCode != 404 {
				return core.RespondEphemeral(slash.Session, slash.Event,
					fmt.Sprintf("Could not delete the card message: %v", derr))
			}
		}
	}
	if err := store.DeleteDailyPost(post.ID); err != nil {
		return err
	}
	return core.RespondEphemeral(slash.Session, slash.Event,
		"Today's event card and its RSVPs were deleted. 🗑️")
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&PostCommand{},
		core.WithCommandLogger(),
		core.WithAdminCheck(),
		core.WithGuildOnly(),
	))
}
