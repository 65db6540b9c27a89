package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/musterbot/muster/internal/core"
)

// registerCommands syncs slash commands for a guild with Discord: deletes
// obsolete ones, creates or updates commands whose definition hash changed.
// Hashes are cached per guild so an unchanged bot restart performs no writes.
func (b *Bot) registerCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("could not list remote commands, skipping obsolete-command cleanup")
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	local := buildCommandDefinitions()
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	cached, err := b.storage.CommandHashes(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("could not load command hash cache")
		cached = map[string]string{}
	}

	for name, rc := range remoteByName {
		if _, keep := localNames[name]; keep {
			continue
		}
		log.Info().Str("guild", guildID).Str("command", name).Msg("deleting obsolete command")
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", name).Msg("delete failed")
		}
		delete(cached, name)
	}

	changed := 0
	for _, d := range local {
		h := hashCommand(d)
		_, registered := remoteByName[d.Name]
		if cached[d.Name] == h && registered {
			continue
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", d.Name).Msg("register failed")
			continue
		}
		cached[d.Name] = h
		changed++
		time.Sleep(25 * time.Millisecond) // stay well under Discord's rate limit
	}
	if changed > 0 {
		log.Info().Str("guild", guildID).Int("changed", changed).Msg("slash commands updated")
	}

	return b.storage.SaveCommandHashes(guildID, cached)
}

func buildCommandDefinitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, cmd := range core.AllCommands() {
		slash, ok := cmd.(core.SlashProvider)
		if !ok {
			continue
		}
		if def := slash.SlashDefinition(); def != nil {
			if def.Type == 0 {
				def.Type = discordgo.ChatApplicationCommand
			}
			defs = append(defs, def)
		}
	}
	return defs
}

// appID returns the bot's application ID, fetching it if State has none yet.
func (b *Bot) appID() (string, error) {
	if b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("fetch bot user: %w", err)
	}
	return u.ID, nil
}
