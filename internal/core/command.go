package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/config"
	"github.com/musterbot/muster/internal/report"
	"github.com/musterbot/muster/internal/scheduler"
	"github.com/musterbot/muster/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Group() string
	Category() string
	RequireAdmin() bool
	RequireDev() bool
	Run(ctx interface{}) error
}

// Deps is what the runtime hands every command besides the interaction itself.
type Deps struct {
	Storage   *storage.Storage
	Scheduler *scheduler.Scheduler
	Reporter  *report.Reporter
	Config    *config.Config
}

// Providers - how this command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Contexts - what runtime hands you when executing a command
// Slash command
type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

type ComponentInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

// Hook for component interactions beyond Run
type ComponentInteractionHandler interface {
	Component(*ComponentInteractionContext) error
	// ComponentPrefix is the custom ID prefix this handler owns.
	ComponentPrefix() string
}

// Modal submit
type ModalSubmitContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

// Hook for modal submits beyond Run
type ModalSubmitHandler interface {
	ModalSubmit(*ModalSubmitContext) error
	// ModalPrefix is the modal custom ID prefix this handler owns.
	ModalPrefix() string
}
