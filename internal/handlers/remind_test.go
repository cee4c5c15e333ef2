package handlers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func remindInteraction(id, before string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "g1",
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "remind",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "id", Type: discordgo.ApplicationCommandOptionString, Value: id},
					{Name: "before", Type: discordgo.ApplicationCommandOptionString, Value: before},
				},
			},
		},
	}
}

func TestRemindAcknowledgesBeforeStoreWork(t *testing.T) {
	st := &fakeDataStore{}
	b := NewBot(nil, st, &fakeChecker{}, nil, "https://squadplanner.fr")

	// The deferred ack needs a live session and panics without one, which
	// pins down the ordering: no session lookup may happen before it.
	assert.Panics(t, func() {
		_ = b.handleRemind(nil, remindInteraction("0a1b2c3d", "1h"))
	})
	assert.Zero(t, st.prefixLookups,
		"the session lookup must wait until the interaction is acknowledged")
}

func TestRemindRejectsUnknownDelayWithoutStoreWork(t *testing.T) {
	st := &fakeDataStore{}
	b := NewBot(nil, st, &fakeChecker{}, nil, "https://squadplanner.fr")

	// Validation replies ephemerally, which also needs a live session.
	assert.Panics(t, func() {
		_ = b.handleRemind(nil, remindInteraction("0a1b2c3d", "2h"))
	})
	assert.Zero(t, st.prefixLookups)
}
