package core

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/version"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string        { return "about" }
func (c *AboutCommand) Description() string { return "Discover what this bot does" }
func (c *AboutCommand) Aliases() []string   { return []string{} }
func (c *AboutCommand) Group() string       { return "core" }
func (c *AboutCommand) Category() string    { return "🕯️ Information" }
func (c *AboutCommand) RequireAdmin() bool  { return false }
func (c *AboutCommand) RequireDev() bool    { return false }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	buildDate := "unknown"
	if version.BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, version.BuildDate); err == nil {
			buildDate = t.Format("2006-01-02")
		}
	}
	goVersion := version.GoVersion
	if goVersion == "" {
		goVersion = runtime.Version()
	}

	embed := &discordgo.MessageEmbed{
		Title:       version.AppName,
		Description: version.AppDescription,
		Color:       core.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Build date", Value: buildDate, Inline: true},
			{Name: "Go version", Value: goVersion, Inline: true},
		},
	}
	return core.RespondEmbedEphemeral(slash.Session, slash.Event, embed)
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&AboutCommand{},
		core.WithCommandLogger(),
	))
}
