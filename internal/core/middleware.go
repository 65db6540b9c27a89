package core

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) Component(ctx *ComponentInteractionContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if ch, ok := w.Command.(ComponentInteractionHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

func (w *wrappedCommand) ComponentPrefix() string {
	if ch, ok := w.Command.(ComponentInteractionHandler); ok {
		return ch.ComponentPrefix()
	}
	return ""
}

func (w *wrappedCommand) ModalSubmit(ctx *ModalSubmitContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if mh, ok := w.Command.(ModalSubmitHandler); ok {
		return mh.ModalSubmit(ctx)
	}
	return nil
}

func (w *wrappedCommand) ModalPrefix() string {
	if mh, ok := w.Command.(ModalSubmitHandler); ok {
		return mh.ModalPrefix()
	}
	return ""
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// dispatch forwards a context to the right hook on the inner command.
func dispatch(cmd Command, ctx interface{}) error {
	switch v := ctx.(type) {
	case *ComponentInteractionContext:
		if ch, ok := cmd.(ComponentInteractionHandler); ok {
			return ch.Component(v)
		}
		return nil
	case *ModalSubmitContext:
		if mh, ok := cmd.(ModalSubmitHandler); ok {
			return mh.ModalSubmit(v)
		}
		return nil
	default:
		return cmd.Run(ctx)
	}
}

func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				var s *discordgo.Session
				var evt *discordgo.InteractionCreate
				switch v := ctx.(type) {
				case *SlashInteractionContext:
					s, evt = v.Session, v.Event
				case *ComponentInteractionContext:
					s, evt = v.Session, v.Event
				case *ModalSubmitContext:
					s, evt = v.Session, v.Event
				default:
					return dispatch(cmd, ctx)
				}
				if evt.GuildID == "" {
					return RespondEphemeral(s, evt, "This command only works inside a server.")
				}
				return dispatch(cmd, ctx)
			},
		}
	}
}

// WithAdminCheck blocks commands marked RequireAdmin for members without the
// Administrator permission. Guild owners and configured developers pass.
func WithAdminCheck() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if !cmd.RequireAdmin() && !cmd.RequireDev() {
					return dispatch(cmd, ctx)
				}

				var s *discordgo.Session
				var evt *discordgo.InteractionCreate
				var deps *Deps
				switch v := ctx.(type) {
				case *SlashInteractionContext:
					s, evt, deps = v.Session, v.Event, v.Deps
				case *ComponentInteractionContext:
					s, evt, deps = v.Session, v.Event, v.Deps
				case *ModalSubmitContext:
					s, evt, deps = v.Session, v.Event, v.Deps
				default:
					return dispatch(cmd, ctx)
				}

				userID := interactionUserID(evt)
				if cmd.RequireDev() && !deps.Config.IsDeveloper(userID) {
					return RespondEphemeral(s, evt, "This command is restricted to the bot developers.")
				}
				if cmd.RequireAdmin() && !IsAdministrator(s, evt, deps.Config) {
					return RespondEphemeral(s, evt, "You need the Administrator permission to use this command.")
				}
				return dispatch(cmd, ctx)
			},
		}
	}
}

// WithCommandLogger logs the invocation and records guild activity for the
// retention policy, after the command ran.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := dispatch(cmd, ctx)

				var evt *discordgo.InteractionCreate
				var deps *Deps
				switch v := ctx.(type) {
				case *SlashInteractionContext:
					evt, deps = v.Event, v.Deps
				case *ComponentInteractionContext:
					evt, deps = v.Event, v.Deps
				case *ModalSubmitContext:
					evt, deps = v.Event, v.Deps
				default:
					return err
				}

				log.Info().
					Str("command", cmd.Name()).
					Str("guild", evt.GuildID).
					Str("user", interactionUserID(evt)).
					Err(err).
					Msg("command executed")

				if evt.GuildID != "" {
					if e := deps.Storage.TouchGuild(evt.GuildID); e != nil {
						log.Warn().Err(e).Str("guild", evt.GuildID).Msg("could not record guild activity")
					}
				}
				return err
			},
		}
	}
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
