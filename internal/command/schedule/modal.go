package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/core"
	"github.com/musterbot/muster/internal/storage"
)

// dayModal builds the input dialog for one weekday, prefilled with whatever
// the schedule already holds for it.
func dayModal(store *storage.Storage, guildID string, idx int) *discordgo.InteractionResponseData {
	day := storage.Weekdays[idx]

	var name, outfit, vehicle string
	if e, err := store.ScheduleDay(guildID, day); err == nil {
		name, outfit, vehicle = e.EventName, e.Outfit, e.Vehicle
	}

	textInput := func(id, label, value string, required bool) discordgo.MessageComponent {
		return discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  id,
					Label:     label,
					Style:     discordgo.TextInputShort,
					Value:     value,
					Required:  required,
					MaxLength: 100,
				},
			},
		}
	}

	return &discordgo.InteractionResponseData{
		CustomID: fmt.Sprintf("schedule:day:%d", idx),
		Title:    fmt.Sprintf("%s (%d/7)", titleWeekday(day), idx+1),
		Components: []discordgo.MessageComponent{
			textInput("event_name", "Event name", name, true),
			textInput("outfit", "Outfit (optional)", outfit, false),
			textInput("vehicle", "Vehicle (optional)", vehicle, false),
		},
	}
}

// ModalSubmit saves the submitted day. Inside a setup flow it then offers the
// next day; for a one-off edit it just confirms.
func (c *ScheduleCommand) ModalSubmit(ctx *core.ModalSubmitContext) error {
	data := ctx.Event.ModalSubmitData()
	idx, err := dayIndexFromCustomID(data.CustomID, c.ModalPrefix())
	if err != nil {
		return err
	}
	day := storage.Weekdays[idx]
	guildID := ctx.Event.GuildID

	name := modalValue(data, "event_name")
	if name == "" {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "The event name can't be empty.")
	}
	if err := ctx.Deps.Storage.SaveScheduleDay(guildID, day,
		name, modalValue(data, "outfit"), modalValue(data, "vehicle")); err != nil {
		return err
	}

	st := activeSetup(ctx.Deps, guildID)
	if st == nil || st.DayIndex != idx {
		return core.RespondEphemeral(ctx.Session, ctx.Event,
			fmt.Sprintf("Updated **%s**: %s", titleWeekday(day), name))
	}

	if idx == len(storage.Weekdays)-1 {
		if err := ctx.Deps.Storage.ClearSetupState(guildID); err != nil {
			return err
		}
		return core.RespondEphemeral(ctx.Session, ctx.Event,
			"🎉 Weekly schedule complete! Check it with `/schedule view`.")
	}

	next := idx + 1
	if err := ctx.Deps.Storage.PutSetupState(guildID, next, time.Now().UTC().Add(setupTTL)); err != nil {
		return err
	}
	return respondStepButtons(ctx.Session, ctx.Event,
		fmt.Sprintf("Saved **%s**. Next up: **%s**.", titleWeekday(day), titleWeekday(storage.Weekdays[next])), next)
}

// Component advances, skips or finishes the setup flow.
func (c *ScheduleCommand) Component(ctx *core.ComponentInteractionContext) error {
	customID := ctx.Event.MessageComponentData().CustomID
	guildID := ctx.Event.GuildID

	if customID == "schedule:done" {
		if err := ctx.Deps.Storage.ClearSetupState(guildID); err != nil {
			return err
		}
		return core.RespondEphemeral(ctx.Session, ctx.Event,
			"Setup finished. Check the result with `/schedule view`.")
	}

	var action string
	var idx int
	switch {
	case strings.HasPrefix(customID, "schedule:next:"):
		action = "next"
		idx, _ = strconv.Atoi(strings.TrimPrefix(customID, "schedule:next:"))
	case strings.HasPrefix(customID, "schedule:skip:"):
		action = "skip"
		idx, _ = strconv.Atoi(strings.TrimPrefix(customID, "schedule:skip:"))
	default:
		return nil
	}
	if idx < 0 || idx >= len(storage.Weekdays) {
		return nil
	}

	if activeSetup(ctx.Deps, guildID) == nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event,
			"This setup has expired. Start again with `/schedule setup`.")
	}

	switch action {
	case "next":
		if err := ctx.Deps.Storage.PutSetupState(guildID, idx, time.Now().UTC().Add(setupTTL)); err != nil {
			return err
		}
		return core.RespondModal(ctx.Session, ctx.Event, dayModal(ctx.Deps.Storage, guildID, idx))

	case "skip":
		if idx == len(storage.Weekdays)-1 {
			if err := ctx.Deps.Storage.ClearSetupState(guildID); err != nil {
				return err
			}
			return core.RespondEphemeral(ctx.Session, ctx.Event,
				"🎉 Weekly schedule complete! Check it with `/schedule view`.")
		}
		next := idx + 1
		if err := ctx.Deps.Storage.PutSetupState(guildID, next, time.Now().UTC().Add(setupTTL)); err != nil {
			return err
		}
		return respondStepButtons(ctx.Session, ctx.Event,
			fmt.Sprintf("Skipped **%s**. Next up: **%s**.",
				titleWeekday(storage.Weekdays[idx]), titleWeekday(storage.Weekdays[next])), next)
	}
	return nil
}

// respondStepButtons shows the continue/skip/finish controls for day idx.
func respondStepButtons(s *discordgo.Session, i *discordgo.InteractionCreate, content string, idx int) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Continue with " + titleWeekday(storage.Weekdays[idx]),
							Style:    discordgo.PrimaryButton,
							CustomID: fmt.Sprintf("schedule:next:%d", idx),
						},
						discordgo.Button{
							Label:    "Skip " + titleWeekday(storage.Weekdays[idx]),
							Style:    discordgo.SecondaryButton,
							CustomID: fmt.Sprintf("schedule:skip:%d", idx),
						},
						discordgo.Button{
							Label:    "Finish",
							Style:    discordgo.SuccessButton,
							CustomID: "schedule:done",
						},
					},
				},
			},
		},
	})
}

func dayIndexFromCustomID(customID, prefix string) (int, error) {
	raw := strings.TrimPrefix(customID, prefix)
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(storage.Weekdays) {
		return 0, errors.New("malformed schedule modal id: " + customID)
	}
	return idx, nil
}

func modalValue(data discordgo.ModalSubmitInteractionData, id string) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if ti, ok := comp.(*discordgo.TextInput); ok && ti.CustomID == id {
				return strings.TrimSpace(ti.Value)
			}
		}
	}
	return ""
}
