package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ProfileByDiscordID returns the Squad Planner profile linked to a Discord
// user, or nil when the account has never been linked.
func (s *Store) ProfileByDiscordID(ctx context.Context, discordUserID string) (*Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, total_points FROM profiles WHERE discord_user_id = $1
	`, discordUserID)

	var p Profile
	if err := row.Scan(&p.ID, &p.Username, &p.TotalPoints); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// SquadsForUser lists every squad the user belongs to.
func (s *Store) SquadsForUser(ctx context.Context, userID string) ([]SquadMembership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sm.squad_id, sq.name
		FROM squad_members sm
		JOIN squads sq ON sq.id = sm.squad_id
		WHERE sm.user_id = $1
		ORDER BY sm.joined_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying squads: %w", err)
	}
	defer rows.Close()

	var memberships []SquadMembership
	for rows.Next() {
		var m SquadMembership
		if err := rows.Scan(&m.SquadID, &m.SquadName); err != nil {
			return nil, fmt.Errorf("scanning squad row: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// FirstSquadForUser returns the user's oldest squad membership, or nil.
func (s *Store) FirstSquadForUser(ctx context.Context, userID string) (*SquadMembership, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT sm.squad_id, sq.name
		FROM squad_members sm
		JOIN squads sq ON sq.id = sm.squad_id
		WHERE sm.user_id = $1
		ORDER BY sm.joined_at ASC
		LIMIT 1
	`, userID)

	var m SquadMembership
	if err := row.Scan(&m.SquadID, &m.SquadName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying first squad: %w", err)
	}
	return &m, nil
}

// Leaderboard ranks profiles by points across all squads the user shares.
func (s *Store) Leaderboard(ctx context.Context, userID string, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.username, p.total_points
		FROM profiles p
		WHERE p.id IN (
			SELECT user_id FROM squad_members
			WHERE squad_id IN (SELECT squad_id FROM squad_members WHERE user_id = $1)
		)
		ORDER BY p.total_points DESC, p.username ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.TotalPoints); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
