// Package billing maps Stripe subscription lifecycle events onto guild
// subscription rows and keeps the entitlement cache honest.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"

	"github.com/squadplanner/squadbot/internal/store"
)

const guildMetadataKey = "discord_guild_id"

// SubscriptionStore is the slice of the store the billing flow touches.
type SubscriptionStore interface {
	GuildSubscription(ctx context.Context, guildID string) (*store.GuildSubscription, error)
	SetSubscriptionCustomer(ctx context.Context, guildID, customerID string) error
	ActivateSubscription(ctx context.Context, guildID, stripeSubscriptionID string) error
	SetSubscriptionStatus(ctx context.Context, guildID, status string, periodEnd *time.Time) error
	GuildIDByStripeSubscription(ctx context.Context, stripeSubscriptionID string) (string, error)
}

// Invalidator drops a guild's cached entitlement after a status change.
type Invalidator interface {
	Invalidate(guildID string)
}

type Service struct {
	store   SubscriptionStore
	cache   Invalidator
	priceID string
	appURL  string
}

func New(st SubscriptionStore, cache Invalidator, priceID, appURL string) *Service {
	return &Service{store: st, cache: cache, priceID: priceID, appURL: appURL}
}

// CreateGuildCheckoutSession returns a Stripe Checkout URL for upgrading a
// guild. The guild's Stripe customer is reused when one exists; otherwise a
// customer tagged with the guild id is created first.
func (b *Service) CreateGuildCheckoutSession(ctx context.Context, guildID, guildName, userID string) (string, error) {
	sub, err := b.store.GuildSubscription(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("loading guild subscription: %w", err)
	}

	var customerID string
	if sub != nil {
		customerID = sub.StripeCustomerID
	}
	if customerID == "" {
		custParams := &stripe.CustomerParams{
			Name: stripe.String("Discord: " + guildName),
		}
		custParams.AddMetadata(guildMetadataKey, guildID)
		cust, err := customer.New(custParams)
		if err != nil {
			return "", fmt.Errorf("creating stripe customer: %w", err)
		}
		customerID = cust.ID
		if err := b.store.SetSubscriptionCustomer(ctx, guildID, customerID); err != nil {
			log.Printf("Error saving stripe customer for guild %s: %v", guildID, err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(b.appURL + "/premium/success"),
		CancelURL:  stripe.String(b.appURL + "/premium"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(b.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				guildMetadataKey:  guildID,
				"discord_user_id": userID,
			},
		},
	}
	params.AddMetadata(guildMetadataKey, guildID)
	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	return s.URL, nil
}

// HandleWebhookEvent applies one verified Stripe event to the subscription
// row and invalidates the guild's cached entitlement. Unknown event types
// are ignored.
func (b *Service) HandleWebhookEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return b.checkoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return b.subscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return b.subscriptionDeleted(ctx, event)
	case "invoice.payment_failed":
		return b.invoicePaymentFailed(ctx, event)
	default:
		log.Printf("Unhandled event type: %s", event.Type)
		return nil
	}
}

func (b *Service) checkoutCompleted(ctx context.Context, event stripe.Event) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return fmt.Errorf("parsing checkout session: %w", err)
	}

	guildID := cs.Metadata[guildMetadataKey]
	if guildID == "" {
		log.Printf("checkout.session.completed without %s, skipping", guildMetadataKey)
		return nil
	}

	var stripeSubID string
	if cs.Subscription != nil {
		stripeSubID = cs.Subscription.ID
	}
	if err := b.store.ActivateSubscription(ctx, guildID, stripeSubID); err != nil {
		return err
	}
	b.cache.Invalidate(guildID)
	return nil
}

func (b *Service) subscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("parsing subscription: %w", err)
	}

	guildID := sub.Metadata[guildMetadataKey]
	if guildID == "" {
		log.Printf("customer.subscription.updated without %s, skipping", guildMetadataKey)
		return nil
	}

	// Stripe's "active" is our "premium"; every other status (past_due,
	// unpaid, ...) is stored as-is so reads stay fail-closed.
	status := string(sub.Status)
	if status == string(stripe.SubscriptionStatusActive) {
		status = "premium"
	}

	var periodEnd *time.Time
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}

	if err := b.store.SetSubscriptionStatus(ctx, guildID, status, periodEnd); err != nil {
		return err
	}
	b.cache.Invalidate(guildID)
	return nil
}

func (b *Service) subscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("parsing subscription: %w", err)
	}

	guildID := sub.Metadata[guildMetadataKey]
	if guildID == "" {
		log.Printf("customer.subscription.deleted without %s, skipping", guildMetadataKey)
		return nil
	}

	if err := b.store.SetSubscriptionStatus(ctx, guildID, "cancelled", nil); err != nil {
		return err
	}
	b.cache.Invalidate(guildID)
	return nil
}

func (b *Service) invoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("parsing invoice: %w", err)
	}

	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		log.Printf("invoice.payment_failed without subscription, skipping")
		return nil
	}

	guildID, err := b.store.GuildIDByStripeSubscription(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}
	if guildID == "" {
		log.Printf("invoice.payment_failed for unknown subscription %s, skipping", invoice.Subscription.ID)
		return nil
	}

	if err := b.store.SetSubscriptionStatus(ctx, guildID, "past_due", nil); err != nil {
		return err
	}
	b.cache.Invalidate(guildID)
	return nil
}
