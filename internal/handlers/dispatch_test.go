package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	entitled map[string]bool
	checks   int
}

func (f *fakeChecker) HasPremium(ctx context.Context, guildID string) bool {
	f.checks++
	return f.entitled[guildID]
}

type fakeResponder struct {
	replies   []string
	followups []string
	replyErr  error
}

func (f *fakeResponder) ReplyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	if f.replyErr != nil {
		return f.replyErr
	}
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeResponder) FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	f.followups = append(f.followups, content)
	return nil
}

func commandInteraction(name, guildID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: guildID,
			Data:    discordgo.ApplicationCommandInteractionData{Name: name},
		},
	}
}

func stubCommand(name string, premium bool, handler HandlerFunc) *Command {
	if handler == nil {
		handler = func(s *discordgo.Session, i *discordgo.InteractionCreate) error { return nil }
	}
	return &Command{
		Def:     &discordgo.ApplicationCommand{Name: name, Description: name},
		Premium: premium,
		Handler: handler,
	}
}

func newTestDispatcher(checker *fakeChecker, cmds ...*Command) (*Dispatcher, *fakeResponder) {
	resp := &fakeResponder{}
	d := NewDispatcher(NewRegistry(cmds...), checker)
	d.resp = resp
	return d, resp
}

func TestUnknownCommandIsSilentlyIgnored(t *testing.T) {
	d, resp := newTestDispatcher(&fakeChecker{})

	d.Handle(nil, commandInteraction("nope", "g1"))

	assert.Empty(t, resp.replies)
	assert.Empty(t, resp.followups)
}

func TestNonCommandInteractionIsIgnored(t *testing.T) {
	invoked := false
	d, resp := newTestDispatcher(&fakeChecker{},
		stubCommand("ping", false, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			invoked = true
			return nil
		}))

	d.Handle(nil, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{Type: discordgo.InteractionMessageComponent},
	})

	assert.False(t, invoked)
	assert.Empty(t, resp.replies)
}

func TestPremiumGateDeniesWithoutEntitlement(t *testing.T) {
	invoked := false
	checker := &fakeChecker{entitled: map[string]bool{}}
	d, resp := newTestDispatcher(checker,
		stubCommand("remind", true, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			invoked = true
			return nil
		}))

	d.Handle(nil, commandInteraction("remind", "g1"))

	assert.False(t, invoked, "gated handler must never run")
	require.Len(t, resp.replies, 1, "exactly one gate-rejection response")
	assert.Equal(t, premiumRequiredMessage, resp.replies[0])
}

func TestPremiumGatePassesWithEntitlement(t *testing.T) {
	invoked := false
	checker := &fakeChecker{entitled: map[string]bool{"g1": true}}
	d, resp := newTestDispatcher(checker,
		stubCommand("remind", true, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			invoked = true
			return nil
		}))

	d.Handle(nil, commandInteraction("remind", "g1"))

	assert.True(t, invoked)
	assert.Empty(t, resp.replies)
}

func TestPremiumGateSkippedOutsideGuilds(t *testing.T) {
	invoked := false
	checker := &fakeChecker{}
	d, _ := newTestDispatcher(checker,
		stubCommand("remind", true, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			invoked = true
			return nil
		}))

	d.Handle(nil, commandInteraction("remind", ""))

	assert.True(t, invoked)
	assert.Equal(t, 0, checker.checks, "no entitlement lookup in DMs")
}

func TestFreeCommandNeverConsultsTheGate(t *testing.T) {
	checker := &fakeChecker{}
	d, _ := newTestDispatcher(checker, stubCommand("ping", false, nil))

	d.Handle(nil, commandInteraction("ping", "g1"))

	assert.Equal(t, 0, checker.checks)
}

func TestHandlerErrorProducesOneGenericReply(t *testing.T) {
	d, resp := newTestDispatcher(&fakeChecker{},
		stubCommand("boom", false, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			return errors.New("database exploded")
		}))

	d.Handle(nil, commandInteraction("boom", "g1"))

	require.Len(t, resp.replies, 1)
	assert.Equal(t, genericErrorMessage, resp.replies[0])
	assert.NotContains(t, resp.replies[0], "database", "internal detail must not leak")
	assert.Empty(t, resp.followups)
}

func TestHandlerErrorFallsBackToFollowupWhenAlreadyReplied(t *testing.T) {
	d, resp := newTestDispatcher(&fakeChecker{},
		stubCommand("boom", false, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			return errors.New("late failure")
		}))
	resp.replyErr = errors.New("interaction has already been acknowledged")

	d.Handle(nil, commandInteraction("boom", "g1"))

	assert.Empty(t, resp.replies)
	require.Len(t, resp.followups, 1, "deferred interactions get exactly one follow-up")
	assert.Equal(t, genericErrorMessage, resp.followups[0])
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	d, resp := newTestDispatcher(&fakeChecker{},
		stubCommand("panicky", false, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			panic("nil map write")
		}))

	assert.NotPanics(t, func() {
		d.Handle(nil, commandInteraction("panicky", "g1"))
	})
	require.Len(t, resp.replies, 1)
	assert.Equal(t, genericErrorMessage, resp.replies[0])
}
