// Package guilds handles per-guild slash-command registration and the
// subscription row lifecycle tied to the bot joining or leaving servers.
package guilds

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// RegisterCommands publishes the command definitions to one guild.
func RegisterCommands(s *discordgo.Session, guildID string, commands []*discordgo.ApplicationCommand) {
	botID := s.State.User.ID
	for _, cmd := range commands {
		_, err := s.ApplicationCommandCreate(botID, guildID, cmd)
		if err != nil {
			log.Printf("Cannot create '%s' command: %v", cmd.Name, err)
		}
	}
}

// DeleteCommands removes every registered command from one guild.
func DeleteCommands(s *discordgo.Session, guildID string) {
	botID := s.State.User.ID
	commands, err := s.ApplicationCommands(botID, guildID)
	if err != nil {
		log.Printf("Failed to fetch commands for guild %s: %v", guildID, err)
		return
	}

	for _, cmd := range commands {
		if err := s.ApplicationCommandDelete(botID, guildID, cmd.ID); err != nil {
			log.Printf("Failed to delete command '%s' from guild %s: %v", cmd.Name, guildID, err)
		}
	}
}
