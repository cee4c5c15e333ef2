package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrSessionLimit is returned when a free-tier squad already has 3 sessions
// scheduled in the current rolling week.
var ErrSessionLimit = errors.New("weekly session limit reached")

const sessionColumns = `
	s.id, s.squad_id, sq.name, s.title, s.game, s.scheduled_at, s.duration_minutes, s.status
	FROM sessions s
	JOIN squads sq ON sq.id = s.squad_id`

type CreateSessionParams struct {
	SquadID         string
	Title           string
	Game            string
	ScheduledAt     time.Time
	DurationMinutes int
	CreatedBy       string
	// EnforceLimit applies the free-tier 3 sessions/week cap. Premium guilds
	// pass false.
	EnforceLimit bool
}

// CreateSession inserts a proposed session and returns its id.
func (s *Store) CreateSession(ctx context.Context, p CreateSessionParams) (string, error) {
	if p.EnforceLimit {
		var count int
		err := s.pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM sessions
			WHERE squad_id = $1 AND created_at >= NOW() - INTERVAL '7 days'
		`, p.SquadID).Scan(&count)
		if err != nil {
			return "", fmt.Errorf("counting weekly sessions: %w", err)
		}
		if count >= 3 {
			return "", ErrSessionLimit
		}
	}

	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sessions (squad_id, title, game, scheduled_at, duration_minutes, created_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'proposed')
		RETURNING id
	`, p.SquadID, p.Title, p.Game, p.ScheduledAt, p.DurationMinutes, p.CreatedBy).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

// UpcomingSessions lists the next upcoming proposed/confirmed sessions across
// every squad the user belongs to.
func (s *Store) UpcomingSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		WHERE s.squad_id IN (SELECT squad_id FROM squad_members WHERE user_id = $1)
		  AND s.status IN ('proposed', 'confirmed')
		  AND s.scheduled_at >= NOW()
		ORDER BY s.scheduled_at ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// SessionByIDPrefix finds an active session whose id starts with the given
// prefix (users see the first 8 characters). Returns nil when nothing matches.
func (s *Store) SessionByIDPrefix(ctx context.Context, prefix string) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		WHERE s.id::text LIKE $1 || '%'
		  AND s.status IN ('proposed', 'confirmed')
		LIMIT 1
	`, prefix)
	return scanSession(row)
}

// SessionByID returns a single session by exact id, or nil.
func (s *Store) SessionByID(ctx context.Context, id string) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		WHERE s.id = $1
	`, id)
	return scanSession(row)
}

// RecentSessions lists sessions that took place in the last 7 days for the
// user's squads, newest first.
func (s *Store) RecentSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		WHERE s.squad_id IN (SELECT squad_id FROM squad_members WHERE user_id = $1)
		  AND s.scheduled_at < NOW()
		  AND s.scheduled_at >= NOW() - INTERVAL '7 days'
		  AND s.status <> 'cancelled'
		ORDER BY s.scheduled_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// UpsertRSVP records or replaces the user's response to a session.
func (s *Store) UpsertRSVP(ctx context.Context, sessionID, userID, response string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_rsvps (session_id, user_id, response)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, user_id) DO UPDATE SET response = EXCLUDED.response
	`, sessionID, userID, response)
	if err != nil {
		return fmt.Errorf("upserting rsvp: %w", err)
	}
	return nil
}

// SessionRSVPSummary tallies responses for one session.
func (s *Store) SessionRSVPSummary(ctx context.Context, sessionID string) (RSVPSummary, error) {
	var summary RSVPSummary
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE response = 'present'),
			COUNT(*) FILTER (WHERE response = 'absent'),
			COUNT(*) FILTER (WHERE response = 'maybe')
		FROM session_rsvps WHERE session_id = $1
	`, sessionID).Scan(&summary.Present, &summary.Absent, &summary.Maybe)
	if err != nil {
		return RSVPSummary{}, fmt.Errorf("querying rsvp summary: %w", err)
	}
	return summary, nil
}

// StatsForUser aggregates past activity across the user's squads.
func (s *Store) StatsForUser(ctx context.Context, userID string) (SquadStats, error) {
	var stats SquadStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE squad_id IN (SELECT squad_id FROM squad_members WHERE user_id = $1)
		  AND scheduled_at < NOW() AND status <> 'cancelled'
	`, userID).Scan(&stats.SessionsPlayed)
	if err != nil {
		return SquadStats{}, fmt.Errorf("counting past sessions: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE r.response = 'present'), COUNT(*)
		FROM session_rsvps r
		WHERE r.session_id IN (
			SELECT id FROM sessions
			WHERE squad_id IN (SELECT squad_id FROM squad_members WHERE user_id = $1)
			  AND scheduled_at < NOW()
		)
	`, userID).Scan(&stats.PresentRSVPs, &stats.TotalRSVPs)
	if err != nil {
		return SquadStats{}, fmt.Errorf("counting rsvps: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM squad_members
		WHERE squad_id IN (SELECT squad_id FROM squad_members WHERE user_id = $1)
	`, userID).Scan(&stats.MemberCount)
	if err != nil {
		return SquadStats{}, fmt.Errorf("counting members: %w", err)
	}
	return stats, nil
}

// SlotStats buckets past sessions by weekday and hour with present-RSVP
// turnout, best turnout first.
func (s *Store) SlotStats(ctx context.Context, userID string, limit int) ([]SlotStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			EXTRACT(DOW FROM s.scheduled_at)::int,
			EXTRACT(HOUR FROM s.scheduled_at)::int,
			COUNT(*) FILTER (WHERE r.response = 'present'),
			COUNT(*)
		FROM sessions s
		JOIN session_rsvps r ON r.session_id = s.id
		WHERE s.squad_id IN (SELECT squad_id FROM squad_members WHERE user_id = $1)
		  AND s.scheduled_at < NOW()
		GROUP BY 1, 2
		ORDER BY COUNT(*) FILTER (WHERE r.response = 'present')::float / COUNT(*) DESC, 4 DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying slot stats: %w", err)
	}
	defer rows.Close()

	var slots []SlotStat
	for rows.Next() {
		var slot SlotStat
		if err := rows.Scan(&slot.Weekday, &slot.Hour, &slot.Present, &slot.Total); err != nil {
			return nil, fmt.Errorf("scanning slot row: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func scanSessions(rows pgx.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		var sess Session
		err := rows.Scan(&sess.ID, &sess.SquadID, &sess.SquadName, &sess.Title, &sess.Game,
			&sess.ScheduledAt, &sess.DurationMinutes, &sess.Status)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.SquadID, &sess.SquadName, &sess.Title, &sess.Game,
		&sess.ScheduledAt, &sess.DurationMinutes, &sess.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &sess, nil
}
