package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	embedColor   = 0x6366f1
	successColor = 0x22c55e
	errorColor   = 0xef4444
)

func baseEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:  embedColor,
		Footer: &discordgo.MessageEmbedFooter{Text: "Squad Planner"},
	}
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       errorColor,
		Description: message,
	}
}

func accountNotLinkedEmbed(appURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: errorColor,
		Title: "Account not linked",
		Description: fmt.Sprintf(
			"Link your Discord account to Squad Planner first.\nGo to [%s](%s/settings) → Settings → Connections.",
			appURL, appURL),
	}
}

// discordTimestamp renders Discord's native timestamp markup.
// style F = full date, R = relative.
func discordTimestamp(unix int64, style string) string {
	return fmt.Sprintf("<t:%d:%s>", unix, style)
}
