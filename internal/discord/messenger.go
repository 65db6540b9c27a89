package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/musterbot/muster/internal/scheduler"
	"github.com/musterbot/muster/pkg/retrylimit"
)

const sendAttempts = 3

// apiError carries the HTTP status of a failed Discord call so the retry
// helper can tell overload from permanent failure.
type apiError struct {
	status int
	err    error
}

func (e *apiError) Error() string   { return e.err.Error() }
func (e *apiError) Unwrap() error   { return e.err }
func (e *apiError) StatusCode() int { return e.status }

// wrapAPIError classifies a discordgo error. 403 becomes a permission error
// the evaluators report to guild admins instead of retrying.
func wrapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return &retrylimit.Fatal{Err: fmt.Errorf("%w: %v", scheduler.ErrPermission, err)}
		default:
			return &apiError{status: rest.Response.StatusCode, err: err}
		}
	}
	return err
}

// Messenger sends scheduler output through a discordgo session, paced by a
// shared adaptive limiter.
type Messenger struct {
	dg  *discordgo.Session
	lim *retrylimit.AdaptiveLimiter
}

func NewMessenger(dg *discordgo.Session, lim *retrylimit.AdaptiveLimiter) *Messenger {
	return &Messenger{dg: dg, lim: lim}
}

func (m *Messenger) SendEventCard(ctx context.Context, channelID string, card scheduler.EventCard) (string, error) {
	var messageID string
	err := retrylimit.WithRetryMax(ctx, func() error {
		msg, err := m.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{eventCardEmbed(card)},
			Components: rsvpButtons(card.PostID),
		}, discordgo.WithContext(ctx))
		if err != nil {
			return wrapAPIError(err)
		}
		messageID = msg.ID
		return nil
	}, m.lim, sendAttempts)
	if err != nil {
		return "", err
	}
	return messageID, nil
}

func (m *Messenger) SendReminder(ctx context.Context, channelID string, r scheduler.Reminder) error {
	return retrylimit.WithRetryMax(ctx, func() error {
		_, err := m.dg.ChannelMessageSendComplex(channelID, reminderMessage(r), discordgo.WithContext(ctx))
		return wrapAPIError(err)
	}, m.lim, sendAttempts)
}

func (m *Messenger) SendAdminNotice(ctx context.Context, channelID, text string) error {
	return retrylimit.WithRetryMax(ctx, func() error {
		_, err := m.dg.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
		return wrapAPIError(err)
	}, m.lim, sendAttempts)
}

// DeleteMessage removes a message; an already-deleted message is success.
func (m *Messenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return retrylimit.WithRetryMax(ctx, func() error {
		err := m.dg.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
		var rest *discordgo.RESTError
		if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			return nil
		}
		return wrapAPIError(err)
	}, m.lim, sendAttempts)
}
