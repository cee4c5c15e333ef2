// Package permissions gates premium commands on a guild's subscription.
// Entitlement reads are heavy (every gated command) and tolerate short
// staleness, so results are cached with a 5 minute TTL and invalidated
// whenever a webhook changes the underlying subscription.
package permissions

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/squadplanner/squadbot/internal/store"
)

const cacheTTL = 5 * time.Minute

// SubscriptionSource is the read side of the subscription store.
type SubscriptionSource interface {
	GuildSubscription(ctx context.Context, guildID string) (*store.GuildSubscription, error)
}

type cacheEntry struct {
	entitled  bool
	expiresAt time.Time
}

// Checker answers "does this guild have premium right now" with bounded
// database traffic. Safe for concurrent use.
type Checker struct {
	src SubscriptionSource
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewChecker(src SubscriptionSource) *Checker {
	return &Checker{
		src:   src,
		ttl:   cacheTTL,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

// HasPremium reports whether the guild's premium features are active. It
// never returns an error: a failed lookup means "not entitled" and is not
// cached, so the next call retries the database instead of trusting a
// cached failure.
func (c *Checker) HasPremium(ctx context.Context, guildID string) bool {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.cache[guildID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.entitled
	}

	sub, err := c.src.GuildSubscription(ctx, guildID)
	if err != nil {
		log.Printf("Error checking subscription for guild %s: %v", guildID, err)
		return false
	}

	entitled := isEntitled(sub, now)

	c.mu.Lock()
	c.cache[guildID] = cacheEntry{entitled: entitled, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()

	return entitled
}

// Invalidate drops any cached entitlement for the guild. No-op when absent.
func (c *Checker) Invalidate(guildID string) {
	c.mu.Lock()
	delete(c.cache, guildID)
	c.mu.Unlock()
}

// isEntitled treats an expired period end as non-premium even when the stored
// status still reads premium. A nil period end means a lifetime subscription.
func isEntitled(sub *store.GuildSubscription, now time.Time) bool {
	if sub == nil || sub.Status != "premium" {
		return false
	}
	if sub.CurrentPeriodEnd == nil {
		return true
	}
	return sub.CurrentPeriodEnd.After(now)
}
