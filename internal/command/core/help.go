package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List available commands" }
func (c *HelpCommand) Aliases() []string   { return []string{} }
func (c *HelpCommand) Group() string       { return "core" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }
func (c *HelpCommand) RequireAdmin() bool  { return false }
func (c *HelpCommand) RequireDev() bool    { return false }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HelpCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	byCategory := map[string][]string{}
	for _, cmd := range core.AllCommands() {
		line := fmt.Sprintf("`/%s` — %s", cmd.Name(), cmd.Description())
		if cmd.RequireAdmin() {
			line += " *(admin)*"
		}
		byCategory[cmd.Category()] = append(byCategory[cmd.Category()], line)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var fields []*discordgo.MessageEmbedField
	for _, cat := range categories {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  cat,
			Value: strings.Join(byCategory[cat], "\n"),
		})
	}

	return core.RespondEmbedEphemeral(slash.Session, slash.Event, &discordgo.MessageEmbed{
		Title:  "Commands",
		Color:  core.EmbedColor,
		Fields: fields,
	})
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&HelpCommand{},
		core.WithCommandLogger(),
	))
}
