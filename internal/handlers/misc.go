package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return respond(s, i, "Pong! 🏓")
}

func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate, reg *Registry) error {
	var lines []string
	for _, cmd := range reg.Commands() {
		marker := ""
		if cmd.Premium {
			marker = " ⭐"
		}
		lines = append(lines, fmt.Sprintf("`/%s`%s — %s", cmd.Def.Name, marker, cmd.Def.Description))
	}

	embed := baseEmbed()
	embed.Title = "Squad Planner commands"
	embed.Description = strings.Join(lines, "\n") + "\n\n⭐ = requires Squad Planner Premium (`/premium`)"
	return respondEmbedEphemeral(s, i, embed)
}

func (b *Bot) handleLink(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)

	profile, err := b.store.ProfileByDiscordID(ctx, user.ID)
	if err != nil {
		return err
	}
	if profile != nil {
		embed := baseEmbed()
		embed.Title = "Already linked"
		embed.Description = fmt.Sprintf("Your Discord account is linked to **%s**.", profile.Username)
		return respondEmbedEphemeral(s, i, embed)
	}

	embed := baseEmbed()
	embed.Title = "Link your account"
	embed.Description = fmt.Sprintf(
		"1. Sign in on [%s](%s)\n2. Open **Settings → Connections**\n3. Click **Connect Discord** and authorize\n\nThen come back and try your command again.",
		b.appURL, b.appURL)
	return respondEmbedEphemeral(s, i, embed)
}

func (b *Bot) handleNext(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)

	profile, err := b.store.ProfileByDiscordID(ctx, user.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return respondEmbedEphemeral(s, i, accountNotLinkedEmbed(b.appURL))
	}

	if err := deferReply(s, i); err != nil {
		return err
	}

	sessions, err := b.store.UpcomingSessions(ctx, profile.ID, 1)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		embed := baseEmbed()
		embed.Title = "No upcoming session"
		embed.Description = "Create one with `/session create`!"
		return editReplyEmbed(s, i, embed)
	}

	sess := sessions[0]
	embed := baseEmbed()
	embed.Title = "Next session"
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Title", Value: sess.Title, Inline: true},
		{Name: "Game", Value: sess.Game, Inline: true},
		{Name: "Squad", Value: sess.SquadName, Inline: true},
		{Name: "Date", Value: fmt.Sprintf("%s (%s)",
			discordTimestamp(sess.ScheduledAt.Unix(), "F"),
			discordTimestamp(sess.ScheduledAt.Unix(), "R")), Inline: false},
		{Name: "ID", Value: fmt.Sprintf("`%s`", shortID(sess.ID)), Inline: true},
	}
	return editReplyEmbed(s, i, embed)
}
