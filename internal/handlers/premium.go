package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handlePremium(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.GuildID == "" {
		return respondEphemeral(s, i, "This command only works inside a server.")
	}

	ctx := context.Background()

	if b.premium.HasPremium(ctx, i.GuildID) {
		sub, err := b.store.GuildSubscription(ctx, i.GuildID)
		if err != nil {
			return err
		}
		embed := baseEmbed()
		embed.Title = "Premium active ⭐"
		embed.Color = successColor
		if sub != nil && sub.CurrentPeriodEnd != nil {
			embed.Description = fmt.Sprintf("This server has Squad Planner Premium.\nRenews %s.",
				discordTimestamp(sub.CurrentPeriodEnd.Unix(), "D"))
		} else {
			embed.Description = "This server has Squad Planner Premium."
		}
		return respondEmbedEphemeral(s, i, embed)
	}

	guildName := i.GuildID
	if g, err := s.State.Guild(i.GuildID); err == nil {
		guildName = g.Name
	}

	user := interactionUser(i)
	url, err := b.billing.CreateGuildCheckoutSession(ctx, i.GuildID, guildName, user.ID)
	if err != nil {
		return err
	}

	embed := baseEmbed()
	embed.Title = "Upgrade to Premium"
	embed.Description = fmt.Sprintf(
		"Unlock `/remind`, `/leaderboard`, `/stats`, `/recap` and `/bestslot` for this server, plus unlimited sessions.\n\n[Complete your upgrade](%s)", url)
	return respondEmbedEphemeral(s, i, embed)
}
