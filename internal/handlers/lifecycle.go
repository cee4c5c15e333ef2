package handlers

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/squadplanner/squadbot/internal/guilds"
)

// ReadyHandler sets the presence line once the gateway session is up.
// Command registration happens in GuildCreateHandler, which the gateway
// fires for every guild on connect.
func (b *Bot) ReadyHandler() func(s *discordgo.Session, r *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as %s", r.User.Username)
		if err := s.UpdateCustomStatus("/session create to plan your next game night"); err != nil {
			log.Printf("Error setting presence: %v", err)
		}
	}
}

// GuildCreateHandler fires for every guild on connect and when the bot is
// invited somewhere new. The subscription upsert runs on every delivery so a
// guild that invited the bot while it was offline still gets its row; the
// insert is ON CONFLICT DO NOTHING, so the startup replay is harmless.
func (b *Bot) GuildCreateHandler(reg *Registry) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if time.Since(g.JoinedAt) < time.Minute {
			log.Printf("Joined a new guild: %s (%s)", g.Name, g.ID)
		}
		if err := b.store.EnsureGuildSubscription(context.Background(), g.ID, g.Name); err != nil {
			log.Printf("Error ensuring subscription row for guild %s: %v", g.ID, err)
		}
		guilds.RegisterCommands(s, g.ID, reg.Definitions())
	}
}

// GuildDeleteHandler cleans up commands when the bot is removed. The
// subscription row is kept on purpose: billing history survives a rejoin.
func (b *Bot) GuildDeleteHandler() func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(s *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Unavailable {
			// Outage, not a removal.
			return
		}
		log.Printf("Removed from guild: %s", g.ID)
		guilds.DeleteCommands(s, g.ID)
	}
}
