package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	profile, err := b.store.ProfileByDiscordID(ctx, interactionUser(i).ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return respondEmbedEphemeral(s, i, accountNotLinkedEmbed(b.appURL))
	}

	if err := deferReply(s, i); err != nil {
		return err
	}

	entries, err := b.store.Leaderboard(ctx, profile.ID, 10)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return editReplyEmbed(s, i, errorEmbed("No players found. Are you in a squad?"))
	}

	medals := []string{"🥇", "🥈", "🥉"}
	lines := make([]string, 0, len(entries))
	for idx, entry := range entries {
		rank := fmt.Sprintf("%d.", idx+1)
		if idx < len(medals) {
			rank = medals[idx]
		}
		lines = append(lines, fmt.Sprintf("%s **%s** — %d pts", rank, entry.Username, entry.TotalPoints))
	}

	embed := baseEmbed()
	embed.Title = "Squad leaderboard"
	embed.Description = strings.Join(lines, "\n")
	return editReplyEmbed(s, i, embed)
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	profile, err := b.store.ProfileByDiscordID(ctx, interactionUser(i).ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return respondEmbedEphemeral(s, i, accountNotLinkedEmbed(b.appURL))
	}

	if err := deferReply(s, i); err != nil {
		return err
	}

	stats, err := b.store.StatsForUser(ctx, profile.ID)
	if err != nil {
		return err
	}

	embed := baseEmbed()
	embed.Title = "Squad stats"
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Sessions played", Value: fmt.Sprintf("%d", stats.SessionsPlayed), Inline: true},
		{Name: "Members", Value: fmt.Sprintf("%d", stats.MemberCount), Inline: true},
		{Name: "Attendance", Value: attendanceLabel(stats.PresentRSVPs, stats.TotalRSVPs), Inline: true},
	}
	return editReplyEmbed(s, i, embed)
}

func (b *Bot) handleRecap(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	profile, err := b.store.ProfileByDiscordID(ctx, interactionUser(i).ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return respondEmbedEphemeral(s, i, accountNotLinkedEmbed(b.appURL))
	}

	if err := deferReply(s, i); err != nil {
		return err
	}

	sessions, err := b.store.RecentSessions(ctx, profile.ID, 10)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		embed := baseEmbed()
		embed.Title = "Nothing played this week"
		embed.Description = "No sessions in the last 7 days. Time to schedule one!"
		return editReplyEmbed(s, i, embed)
	}

	lines := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		summary, err := b.store.SessionRSVPSummary(ctx, sess.ID)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("**%s** (%s) — %s · %d present",
			sess.Title, sess.Game, discordTimestamp(sess.ScheduledAt.Unix(), "R"), summary.Present))
	}

	embed := baseEmbed()
	embed.Title = fmt.Sprintf("Last 7 days — %d session(s)", len(sessions))
	embed.Description = strings.Join(lines, "\n")
	return editReplyEmbed(s, i, embed)
}

func (b *Bot) handleBestSlot(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	profile, err := b.store.ProfileByDiscordID(ctx, interactionUser(i).ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return respondEmbedEphemeral(s, i, accountNotLinkedEmbed(b.appURL))
	}

	if err := deferReply(s, i); err != nil {
		return err
	}

	slots, err := b.store.SlotStats(ctx, profile.ID, 3)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return editReplyEmbed(s, i, errorEmbed("Not enough session history yet. Play a few sessions first!"))
	}

	lines := make([]string, 0, len(slots))
	for _, slot := range slots {
		lines = append(lines, fmt.Sprintf("**%s %02d:00** — %s turnout (%d/%d present)",
			weekdayName(slot.Weekday), slot.Hour,
			attendanceLabel(slot.Present, slot.Total), slot.Present, slot.Total))
	}

	embed := baseEmbed()
	embed.Title = "Best time slots"
	embed.Description = strings.Join(lines, "\n") + "\n\nBased on past RSVP turnout across your squads."
	return editReplyEmbed(s, i, embed)
}

func attendanceLabel(present, total int) string {
	if total == 0 {
		return "—"
	}
	return fmt.Sprintf("%d%%", present*100/total)
}

// weekdayName maps Postgres DOW (0 = Sunday) to a display name.
func weekdayName(dow int) string {
	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if dow < 0 || dow >= len(names) {
		return "?"
	}
	return names[dow]
}
