package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/squadplanner/squadbot/internal/store"
)

// fakeDataStore records the calls the handlers make. Zero values everywhere
// else.
type fakeDataStore struct {
	ensured       []string
	prefixLookups int
}

func (f *fakeDataStore) ProfileByDiscordID(ctx context.Context, discordUserID string) (*store.Profile, error) {
	return &store.Profile{ID: "p1", Username: "tester"}, nil
}

func (f *fakeDataStore) FirstSquadForUser(ctx context.Context, userID string) (*store.SquadMembership, error) {
	return nil, nil
}

func (f *fakeDataStore) CreateSession(ctx context.Context, p store.CreateSessionParams) (string, error) {
	return "", nil
}

func (f *fakeDataStore) UpcomingSessions(ctx context.Context, userID string, limit int) ([]store.Session, error) {
	return nil, nil
}

func (f *fakeDataStore) RecentSessions(ctx context.Context, userID string, limit int) ([]store.Session, error) {
	return nil, nil
}

func (f *fakeDataStore) SessionByIDPrefix(ctx context.Context, prefix string) (*store.Session, error) {
	f.prefixLookups++
	return nil, nil
}

func (f *fakeDataStore) SessionByID(ctx context.Context, id string) (*store.Session, error) {
	return nil, nil
}

func (f *fakeDataStore) UpsertRSVP(ctx context.Context, sessionID, userID, response string) error {
	return nil
}

func (f *fakeDataStore) SessionRSVPSummary(ctx context.Context, sessionID string) (store.RSVPSummary, error) {
	return store.RSVPSummary{}, nil
}

func (f *fakeDataStore) Leaderboard(ctx context.Context, userID string, limit int) ([]store.LeaderboardEntry, error) {
	return nil, nil
}

func (f *fakeDataStore) StatsForUser(ctx context.Context, userID string) (store.SquadStats, error) {
	return store.SquadStats{}, nil
}

func (f *fakeDataStore) SlotStats(ctx context.Context, userID string, limit int) ([]store.SlotStat, error) {
	return nil, nil
}

func (f *fakeDataStore) GuildSubscription(ctx context.Context, guildID string) (*store.GuildSubscription, error) {
	return nil, nil
}

func (f *fakeDataStore) EnsureGuildSubscription(ctx context.Context, guildID, guildName string) error {
	f.ensured = append(f.ensured, guildID)
	return nil
}

func TestGuildCreateUpsertsRowForPreexistingJoin(t *testing.T) {
	st := &fakeDataStore{}
	b := NewBot(nil, st, &fakeChecker{}, nil, "https://squadplanner.fr")
	handler := b.GuildCreateHandler(b.Registry())

	// Connecting replays GuildCreate with the original JoinedAt, which is how
	// a guild that invited the bot while it was offline shows up.
	g := &discordgo.GuildCreate{Guild: &discordgo.Guild{
		ID:       "g-offline",
		Name:     "Old Guild",
		JoinedAt: time.Now().Add(-2 * time.Hour),
	}}
	func() {
		// Command registration needs a live session; the upsert runs first.
		defer func() { _ = recover() }()
		handler(nil, g)
	}()

	assert.Equal(t, []string{"g-offline"}, st.ensured,
		"an old JoinedAt must not skip the subscription row upsert")
}
