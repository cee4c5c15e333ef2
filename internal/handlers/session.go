package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/squadplanner/squadbot/internal/store"
)

const sessionDateLayout = "2006-01-02 15:04"

func (b *Bot) handleSession(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)

	profile, err := b.store.ProfileByDiscordID(ctx, user.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return respondEmbedEphemeral(s, i, accountNotLinkedEmbed(b.appURL))
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "create":
		return b.sessionCreate(ctx, s, i, profile, optionMap(sub.Options))
	case "list":
		return b.sessionList(ctx, s, i, profile)
	case "join":
		return b.sessionJoin(ctx, s, i, profile, optionMap(sub.Options))
	}
	return nil
}

func (b *Bot) sessionCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate,
	profile *store.Profile, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := deferReply(s, i); err != nil {
		return err
	}

	title := opts["title"].StringValue()
	game := opts["game"].StringValue()
	duration := 120
	if opt, ok := opts["duration"]; ok {
		duration = int(opt.IntValue())
	}

	scheduledAt, err := parseSessionDate(opts["date"].StringValue())
	if err != nil {
		return editReplyEmbed(s, i, errorEmbed("Invalid date format. Use: `YYYY-MM-DD HH:MM`"))
	}
	if !scheduledAt.After(time.Now()) {
		return editReplyEmbed(s, i, errorEmbed("The date must be in the future."))
	}

	membership, err := b.store.FirstSquadForUser(ctx, profile.ID)
	if err != nil {
		return err
	}
	if membership == nil {
		return editReplyEmbed(s, i, errorEmbed(
			fmt.Sprintf("You don't have a squad yet. Create one on [squadplanner.fr](%s)", b.appURL)))
	}

	// Premium guilds are not capped at 3 sessions/week.
	enforceLimit := i.GuildID == "" || !b.premium.HasPremium(ctx, i.GuildID)

	sessionID, err := b.store.CreateSession(ctx, store.CreateSessionParams{
		SquadID:         membership.SquadID,
		Title:           title,
		Game:            game,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		CreatedBy:       profile.ID,
		EnforceLimit:    enforceLimit,
	})
	if err != nil {
		if errors.Is(err, store.ErrSessionLimit) {
			return editReplyEmbed(s, i, errorEmbed(
				"Limit of 3 sessions/week reached (Free tier).\n"+
					fmt.Sprintf("Go Premium for unlimited sessions! [Learn more](%s/premium)", b.appURL)))
		}
		return err
	}

	// The creator always attends their own session.
	if err := b.store.UpsertRSVP(ctx, sessionID, profile.ID, "present"); err != nil {
		log.Printf("Error auto-RSVPing creator for session %s: %v", sessionID, err)
	}

	embed := baseEmbed()
	embed.Title = "Session created!"
	embed.Color = successColor
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Title", Value: title, Inline: true},
		{Name: "Game", Value: game, Inline: true},
		{Name: "Date", Value: discordTimestamp(scheduledAt.Unix(), "F"), Inline: false},
		{Name: "Duration", Value: fmt.Sprintf("%d min", duration), Inline: true},
		{Name: "ID", Value: fmt.Sprintf("`%s`", shortID(sessionID)), Inline: true},
	}
	return editReplyEmbed(s, i, embed)
}

func (b *Bot) sessionList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, profile *store.Profile) error {
	if err := deferReply(s, i); err != nil {
		return err
	}

	sessions, err := b.store.UpcomingSessions(ctx, profile.ID, 10)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		embed := baseEmbed()
		embed.Title = "No upcoming sessions"
		embed.Description = "Create one with `/session create`!"
		return editReplyEmbed(s, i, embed)
	}

	lines := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		icon := "⏳"
		if sess.Status == "confirmed" {
			icon = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s **%s** (%s) — %s\n> Squad: %s | ID: `%s`",
			icon, sess.Title, sess.Game, discordTimestamp(sess.ScheduledAt.Unix(), "R"),
			sess.SquadName, shortID(sess.ID)))
	}

	embed := baseEmbed()
	embed.Title = fmt.Sprintf("%d upcoming session(s)", len(sessions))
	embed.Description = strings.Join(lines, "\n\n")
	return editReplyEmbed(s, i, embed)
}

func (b *Bot) sessionJoin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate,
	profile *store.Profile, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
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

	if err := b.store.UpsertRSVP(ctx, sess.ID, profile.ID, "present"); err != nil {
		return err
	}

	embed := baseEmbed()
	embed.Title = "You joined the session!"
	embed.Color = successColor
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Session", Value: sess.Title, Inline: true},
		{Name: "Game", Value: sess.Game, Inline: true},
		{Name: "Date", Value: discordTimestamp(sess.ScheduledAt.Unix(), "F"), Inline: false},
	}
	return editReplyEmbed(s, i, embed)
}

func parseSessionDate(value string) (time.Time, error) {
	return time.ParseInLocation(sessionDateLayout, value, time.Local)
}

// shortID is the 8-character session id prefix users type into commands.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
