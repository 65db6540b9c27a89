package scheduler

import (
	"context"
	"errors"
)

// ErrPermission marks a send or delete the bot lacked Discord permissions for.
// The evaluators surface it to the guild's admin channel instead of retrying
// blindly.
var ErrPermission = errors.New("scheduler: missing permission")

// EventCard is everything needed to render a daily event announcement with
// RSVP controls. PostID is minted before the send so the message's component
// custom ids can carry it.
type EventCard struct {
	PostID    string
	EventDate string
	Weekday   string
	EventName string
	Outfit    string
	Vehicle   string
	EventTime string // guild-local "HH:MM"
	Timezone  string
}

// Reminder is a pre-event announcement for one reminder type.
type Reminder struct {
	Type      string
	Weekday   string
	EventName string
	Outfit    string
	Vehicle   string
	EventTime string // guild-local "HH:MM"
}

// Messenger is the chat-platform capability surface the evaluators depend on.
// The production implementation lives in internal/discord; tests substitute a
// recording fake.
type Messenger interface {
	// SendEventCard posts a card and returns the platform message id.
	SendEventCard(ctx context.Context, channelID string, card EventCard) (string, error)
	SendReminder(ctx context.Context, channelID string, r Reminder) error
	SendAdminNotice(ctx context.Context, channelID, text string) error
	// DeleteMessage removes a message; deleting an already-gone message is not
	// an error.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}
