package store

import "time"

type Profile struct {
	ID          string
	Username    string
	TotalPoints int
}

type SquadMembership struct {
	SquadID   string
	SquadName string
}

type Session struct {
	ID              string
	SquadID         string
	SquadName       string
	Title           string
	Game            string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          string
}

type RSVPSummary struct {
	Present int
	Absent  int
	Maybe   int
}

type GuildSubscription struct {
	GuildID              string
	GuildName            string
	Status               string
	CurrentPeriodEnd     *time.Time
	StripeCustomerID     string
	StripeSubscriptionID string
}

type LeaderboardEntry struct {
	Username    string
	TotalPoints int
}

type SquadStats struct {
	SessionsPlayed int
	PresentRSVPs   int
	TotalRSVPs     int
	MemberCount    int
}

// SlotStat is one (weekday, hour) bucket of historical turnout.
type SlotStat struct {
	Weekday int // 0 = Sunday, Postgres DOW convention
	Hour    int
	Present int
	Total   int
}
