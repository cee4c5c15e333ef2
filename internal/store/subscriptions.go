package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// EnsureGuildSubscription creates the free-tier row the first time the bot
// joins a guild. Rows are never hard-deleted, so rejoining keeps billing
// history intact.
func (s *Store) EnsureGuildSubscription(ctx context.Context, guildID, guildName string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO discord_server_subscriptions (discord_guild_id, guild_name, status)
		VALUES ($1, $2, 'free')
		ON CONFLICT (discord_guild_id) DO NOTHING
	`, guildID, guildName)
	if err != nil {
		return fmt.Errorf("upserting guild subscription: %w", err)
	}
	return nil
}

// GuildSubscription returns the subscription row for a guild, or nil when the
// guild has never been seen.
func (s *Store) GuildSubscription(ctx context.Context, guildID string) (*GuildSubscription, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT discord_guild_id, guild_name, status, current_period_end,
		       COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, '')
		FROM discord_server_subscriptions
		WHERE discord_guild_id = $1
	`, guildID)

	var sub GuildSubscription
	err := row.Scan(&sub.GuildID, &sub.GuildName, &sub.Status, &sub.CurrentPeriodEnd,
		&sub.StripeCustomerID, &sub.StripeSubscriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying guild subscription: %w", err)
	}
	return &sub, nil
}

// SetSubscriptionCustomer records the Stripe customer created for a guild.
// Upserts so a guild whose row was never created still gets one.
func (s *Store) SetSubscriptionCustomer(ctx context.Context, guildID, customerID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO discord_server_subscriptions (discord_guild_id, stripe_customer_id)
		VALUES ($1, $2)
		ON CONFLICT (discord_guild_id) DO UPDATE SET stripe_customer_id = EXCLUDED.stripe_customer_id
	`, guildID, customerID)
	if err != nil {
		return fmt.Errorf("upserting stripe customer: %w", err)
	}
	return nil
}

// ActivateSubscription marks a guild premium after a completed checkout.
// Upserts: a paid checkout must land even when the guild row is missing.
func (s *Store) ActivateSubscription(ctx context.Context, guildID, stripeSubscriptionID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO discord_server_subscriptions (discord_guild_id, status, stripe_subscription_id)
		VALUES ($1, 'premium', $2)
		ON CONFLICT (discord_guild_id) DO UPDATE
			SET status = 'premium', stripe_subscription_id = EXCLUDED.stripe_subscription_id
	`, guildID, stripeSubscriptionID)
	if err != nil {
		return fmt.Errorf("activating subscription: %w", err)
	}
	return nil
}

// SetSubscriptionStatus upserts the status and, when non-nil, the period end.
func (s *Store) SetSubscriptionStatus(ctx context.Context, guildID, status string, periodEnd *time.Time) error {
	var err error
	if periodEnd != nil {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO discord_server_subscriptions (discord_guild_id, status, current_period_end)
			VALUES ($1, $2, $3)
			ON CONFLICT (discord_guild_id) DO UPDATE
				SET status = EXCLUDED.status, current_period_end = EXCLUDED.current_period_end
		`, guildID, status, *periodEnd)
	} else {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO discord_server_subscriptions (discord_guild_id, status)
			VALUES ($1, $2)
			ON CONFLICT (discord_guild_id) DO UPDATE SET status = EXCLUDED.status
		`, guildID, status)
	}
	if err != nil {
		return fmt.Errorf("upserting subscription status: %w", err)
	}
	return nil
}

// GuildIDByStripeSubscription resolves which guild a Stripe subscription
// belongs to. Returns "" when unknown.
func (s *Store) GuildIDByStripeSubscription(ctx context.Context, stripeSubscriptionID string) (string, error) {
	var guildID string
	err := s.pool.QueryRow(ctx, `
		SELECT discord_guild_id FROM discord_server_subscriptions
		WHERE stripe_subscription_id = $1
	`, stripeSubscriptionID).Scan(&guildID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("querying guild by stripe subscription: %w", err)
	}
	return guildID, nil
}
