package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var rsvpLabels = map[string]string{
	"present": "✅ Present",
	"absent":  "❌ Absent",
	"maybe":   "❓ Maybe",
}

func (b *Bot) handleRSVP(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)

	profile, err := b.store.ProfileByDiscordID(ctx, user.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return respondEmbedEphemeral(s, i, accountNotLinkedEmbed(b.appURL))
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	response := opts["response"].StringValue()
	label, ok := rsvpLabels[response]
	if !ok {
		return respondEmbedEphemeral(s, i, errorEmbed("Invalid response. Pick present, absent or maybe."))
	}

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

	if err := b.store.UpsertRSVP(ctx, sess.ID, profile.ID, response); err != nil {
		return err
	}

	summary, err := b.store.SessionRSVPSummary(ctx, sess.ID)
	if err != nil {
		return err
	}

	embed := baseEmbed()
	embed.Title = "RSVP saved"
	embed.Color = successColor
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Session", Value: sess.Title, Inline: true},
		{Name: "Your answer", Value: label, Inline: true},
		{Name: "Date", Value: discordTimestamp(sess.ScheduledAt.Unix(), "F"), Inline: false},
		{Name: "RSVPs", Value: fmt.Sprintf("✅ %d · ❓ %d · ❌ %d",
			summary.Present, summary.Maybe, summary.Absent), Inline: false},
	}
	return editReplyEmbed(s, i, embed)
}
