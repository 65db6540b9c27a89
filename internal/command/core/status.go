package core

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/version"
)

// started anchors the uptime readout to process start.
var started = time.Now()

type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Show bot health: uptime, latency, database" }
func (c *StatusCommand) Aliases() []string   { return []string{} }
func (c *StatusCommand) Group() string       { return "core" }
func (c *StatusCommand) Category() string    { return "🛠️ Maintenance" }
func (c *StatusCommand) RequireAdmin() bool  { return true }
func (c *StatusCommand) RequireDev() bool    { return false }

func (c *StatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StatusCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbStatus := "✅ connected"
	dbStart := time.Now()
	if err := slash.Deps.Storage.Ping(pingCtx); err != nil {
		dbStatus = fmt.Sprintf("⚠️ %v", err)
	} else {
		dbStatus = fmt.Sprintf("%s (%dms)", dbStatus, time.Since(dbStart).Milliseconds())
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Status", version.AppName),
		Color: core.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Uptime", Value: formatUptime(time.Since(started)), Inline: true},
			{Name: "Gateway latency", Value: fmt.Sprintf("%dms", slash.Session.HeartbeatLatency().Milliseconds()), Inline: true},
			{Name: "Database", Value: dbStatus, Inline: false},
		},
	}
	return core.RespondEmbed(slash.Session, slash.Event, embed)
}

// formatUptime renders a duration as the largest two units, e.g. "3d 4h".
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

func init() {
	core.RegisterCommand(core.ApplyMiddlewares(
		&StatusCommand{},
		core.WithCommandLogger(),
		core.WithAdminCheck(),
		core.WithGuildOnly(),
	))
}
