package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Aliases() []string   { return []string{} }
func (c *PingCommand) Group() string       { return "core" }
func (c *PingCommand) Category() string    { return "🛠️ Maintenance" }
func (c *PingCommand) RequireAdmin() bool  { return false }
func (c *PingCommand) RequireDev() bool    { return false }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}
	latency := slash.Session.HeartbeatLatency().Milliseconds()
	return core.Respond(slash.Session, slash.Event, fmt.Sprintf("🏓 Pong! %dms", latency))
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&PingCommand{},
		core.WithCommandLogger(),
	))
}
