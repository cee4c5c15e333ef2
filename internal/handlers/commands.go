package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/squadplanner/squadbot/internal/billing"
	"github.com/squadplanner/squadbot/internal/reminders"
	"github.com/squadplanner/squadbot/internal/store"
)

// DataStore is everything the command handlers read and write. *store.Store
// implements it; tests substitute fakes.
type DataStore interface {
	ProfileByDiscordID(ctx context.Context, discordUserID string) (*store.Profile, error)
	FirstSquadForUser(ctx context.Context, userID string) (*store.SquadMembership, error)
	CreateSession(ctx context.Context, p store.CreateSessionParams) (string, error)
	UpcomingSessions(ctx context.Context, userID string, limit int) ([]store.Session, error)
	RecentSessions(ctx context.Context, userID string, limit int) ([]store.Session, error)
	SessionByIDPrefix(ctx context.Context, prefix string) (*store.Session, error)
	SessionByID(ctx context.Context, id string) (*store.Session, error)
	UpsertRSVP(ctx context.Context, sessionID, userID, response string) error
	SessionRSVPSummary(ctx context.Context, sessionID string) (store.RSVPSummary, error)
	Leaderboard(ctx context.Context, userID string, limit int) ([]store.LeaderboardEntry, error)
	StatsForUser(ctx context.Context, userID string) (store.SquadStats, error)
	SlotStats(ctx context.Context, userID string, limit int) ([]store.SlotStat, error)
	GuildSubscription(ctx context.Context, guildID string) (*store.GuildSubscription, error)
	EnsureGuildSubscription(ctx context.Context, guildID, guildName string) error
}

// Bot owns the state the command handlers share: the store, the premium
// checker, the reminder scheduler and the Stripe billing flow. One instance
// lives for the whole process (no module-level globals, so tests can build
// isolated instances).
type Bot struct {
	session   *discordgo.Session
	store     DataStore
	premium   EntitlementChecker
	billing   *billing.Service
	reminders *reminders.Scheduler
	appURL    string
}

func NewBot(session *discordgo.Session, st DataStore, premium EntitlementChecker, bill *billing.Service, appURL string) *Bot {
	b := &Bot{
		session: session,
		store:   st,
		premium: premium,
		billing: bill,
		appURL:  appURL,
	}
	b.reminders = reminders.NewScheduler(b.deliverReminder)
	return b
}

// PendingReminders is exposed for the health endpoint.
func (b *Bot) PendingReminders() int {
	return b.reminders.Pending()
}

// Registry builds the fixed command table: 7 free commands, 5 premium.
func (b *Bot) Registry() *Registry {
	var reg *Registry

	reg = NewRegistry(
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "ping", Description: "Check that the bot is alive"},
			Handler: b.handlePing,
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "help", Description: "List every Squad Planner command"},
			Handler: func(s *discordgo.Session, i *discordgo.InteractionCreate) error { return b.handleHelp(s, i, reg) },
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "link", Description: "Link your Discord account to Squad Planner"},
			Handler: b.handleLink,
		},
		&Command{
			Def: &discordgo.ApplicationCommand{
				Name:        "session",
				Description: "Manage gaming sessions",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "create",
						Description: "Create a new session",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Session title", Required: true},
							{Type: discordgo.ApplicationCommandOptionString, Name: "game", Description: "Game", Required: true},
							{Type: discordgo.ApplicationCommandOptionString, Name: "date", Description: "Date and time (e.g. 2026-03-20 21:00)", Required: true},
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "duration", Description: "Duration in minutes (default: 120)"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "list",
						Description: "List upcoming sessions",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "join",
						Description: "Join a session",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Session ID (first 8 characters)", Required: true},
						},
					},
				},
			},
			Handler: b.handleSession,
		},
		&Command{
			Def: &discordgo.ApplicationCommand{
				Name:        "rsvp",
				Description: "Respond to a session invitation",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Session ID (first 8 characters)", Required: true},
					{
						Type: discordgo.ApplicationCommandOptionString, Name: "response", Description: "Your answer", Required: true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Present", Value: "present"},
							{Name: "Absent", Value: "absent"},
							{Name: "Maybe", Value: "maybe"},
						},
					},
				},
			},
			Handler: b.handleRSVP,
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "next", Description: "Show your next upcoming session"},
			Handler: b.handleNext,
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "premium", Description: "Show or upgrade this server's premium status"},
			Handler: b.handlePremium,
		},

		&Command{
			Def: &discordgo.ApplicationCommand{
				Name:        "remind",
				Description: "Schedule a reminder before a session starts",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Session ID (first 8 characters)", Required: true},
					{
						Type: discordgo.ApplicationCommandOptionString, Name: "before", Description: "How long before the session", Required: true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "15 minutes", Value: "15m"},
							{Name: "1 hour", Value: "1h"},
							{Name: "24 hours", Value: "24h"},
						},
					},
				},
			},
			Premium: true,
			Handler: b.handleRemind,
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "leaderboard", Description: "Top players across your squads"},
			Premium: true,
			Handler: b.handleLeaderboard,
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "stats", Description: "Session and attendance stats for your squads"},
			Premium: true,
			Handler: b.handleStats,
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "recap", Description: "Recap of the last 7 days of sessions"},
			Premium: true,
			Handler: b.handleRecap,
		},
		&Command{
			Def:     &discordgo.ApplicationCommand{Name: "bestslot", Description: "Best time slots based on past attendance"},
			Premium: true,
			Handler: b.handleBestSlot,
		},
	)
	return reg
}
