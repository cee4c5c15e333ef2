package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/squadplanner/squadbot/internal/reminders"
)

var reminderDelays = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
}

func (b *Bot) handleRemind(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	opts := optionMap(i.ApplicationCommandData().Options)

	delay, ok := reminderDelays[opts["before"].StringValue()]
	if !ok {
		return respondEmbedEphemeral(s, i, errorEmbed("Invalid delay. Pick 15m, 1h or 24h."))
	}

	// Acknowledge before touching the database; Discord gives 3 seconds.
	if err := deferReply(s, i); err != nil {
		return err
	}

	sess, err := b.store.SessionByIDPrefix(ctx, opts["id"].StringValue())
	if err != nil {
		return err
	}
	if sess == nil {
		return editReplyEmbed(s, i, errorEmbed("Session not found. Check the ID with `/session list`."))
	}

	fireAt := sess.ScheduledAt.Add(-delay)
	if err := b.reminders.Schedule(sess.ID, i.ChannelID, fireAt); err != nil {
		if errors.Is(err, reminders.ErrPast) {
			return editReplyEmbed(s, i, errorEmbed(fmt.Sprintf(
				"That reminder would already be in the past — the session starts %s.",
				discordTimestamp(sess.ScheduledAt.Unix(), "R"))))
		}
		return err
	}

	embed := baseEmbed()
	embed.Title = "Reminder set ⏰"
	embed.Color = successColor
	embed.Description = fmt.Sprintf("I'll ping this channel %s for **%s**.",
		discordTimestamp(fireAt.Unix(), "R"), sess.Title)
	return editReplyEmbed(s, i, embed)
}

// deliverReminder runs when a reminder timer fires. It re-reads the session
// so the message reflects the current RSVP state, not the state at schedule
// time. Delivery failures are logged and swallowed.
func (b *Bot) deliverReminder(sessionID, channelID string) {
	ctx := context.Background()

	sess, err := b.store.SessionByID(ctx, sessionID)
	if err != nil {
		log.Printf("Error loading session %s for reminder: %v", sessionID, err)
		return
	}
	if sess == nil || sess.Status == "cancelled" {
		return
	}

	summary, err := b.store.SessionRSVPSummary(ctx, sessionID)
	if err != nil {
		log.Printf("Error loading RSVP summary for session %s: %v", sessionID, err)
	}

	embed := baseEmbed()
	embed.Title = "⏰ Session starting soon!"
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Session", Value: sess.Title, Inline: true},
		{Name: "Game", Value: sess.Game, Inline: true},
		{Name: "Starts", Value: discordTimestamp(sess.ScheduledAt.Unix(), "R"), Inline: false},
		{Name: "RSVPs", Value: fmt.Sprintf("✅ %d present · ❓ %d maybe · ❌ %d absent",
			summary.Present, summary.Maybe, summary.Absent), Inline: false},
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Error delivering reminder to channel %s: %v", channelID, err)
	}
}
