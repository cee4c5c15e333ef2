package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

const (
	premiumRequiredMessage = "This command needs **Squad Planner Premium** for this server.\nRun `/premium` to unlock it."
	genericErrorMessage    = "Something went wrong, try again."
)

// EntitlementChecker is the premium gate consulted before gated commands.
type EntitlementChecker interface {
	HasPremium(ctx context.Context, guildID string) bool
}

// Responder sends the dispatcher's own replies. Split out so tests can
// observe responses without a live Discord session.
type Responder interface {
	ReplyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error
	FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error
}

// Dispatcher routes interactions to registered command handlers. It is the
// only place handler failures are caught and turned into user-visible
// messages.
type Dispatcher struct {
	registry *Registry
	premium  EntitlementChecker
	resp     Responder
}

func NewDispatcher(registry *Registry, premium EntitlementChecker) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		premium:  premium,
		resp:     discordResponder{},
	}
}

// Handle is registered as the discordgo InteractionCreate handler. Each
// invocation runs independently on discordgo's event goroutines.
func (d *Dispatcher) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := d.registry.Get(name)
	if !ok {
		// Stale registration, nothing sensible to answer.
		return
	}

	if cmd.Premium && i.GuildID != "" && !d.premium.HasPremium(context.Background(), i.GuildID) {
		if err := d.resp.ReplyEphemeral(s, i, premiumRequiredMessage); err != nil {
			log.Printf("Error sending premium-required reply for /%s: %v", name, err)
		}
		return
	}

	if err := invoke(cmd.Handler, s, i); err != nil {
		log.Printf("Error running command /%s: %v", name, err)
		// If the handler already replied or deferred, the fresh reply fails
		// and the follow-up is the only channel left.
		if respErr := d.resp.ReplyEphemeral(s, i, genericErrorMessage); respErr != nil {
			if fuErr := d.resp.FollowupEphemeral(s, i, genericErrorMessage); fuErr != nil {
				log.Printf("Error sending error reply for /%s: %v", name, fuErr)
			}
		}
	}
}

// invoke runs the handler, converting a panic into an ordinary error so one
// bad command cannot take the bot down.
func invoke(h HandlerFunc, s *discordgo.Session, i *discordgo.InteractionCreate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(s, i)
}
