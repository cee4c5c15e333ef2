package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadplanner/squadbot/internal/billing"
	"github.com/squadplanner/squadbot/internal/store"
)

type nullStore struct{}

func (nullStore) GuildSubscription(ctx context.Context, guildID string) (*store.GuildSubscription, error) {
	return nil, nil
}
func (nullStore) SetSubscriptionCustomer(ctx context.Context, guildID, customerID string) error {
	return nil
}
func (nullStore) ActivateSubscription(ctx context.Context, guildID, stripeSubscriptionID string) error {
	return nil
}
func (nullStore) SetSubscriptionStatus(ctx context.Context, guildID, status string, periodEnd *time.Time) error {
	return nil
}
func (nullStore) GuildIDByStripeSubscription(ctx context.Context, stripeSubscriptionID string) (string, error) {
	return "", nil
}

type nullCache struct{}

func (nullCache) Invalidate(guildID string) {}

type staticReminders struct{ pending int }

func (s staticReminders) PendingReminders() int { return s.pending }

const testSecret = "whsec_test"

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	bill := billing.New(nullStore{}, nullCache{}, "price_test", "https://squadplanner.fr")
	return NewServer(bill, nil, staticReminders{pending: 2}, testSecret)
}

// signStripePayload builds a valid Stripe-Signature header for the payload.
func signStripePayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["guilds"])
	assert.EqualValues(t, 2, body["pending_reminders"])
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=0,v1=deadbeef")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookAcceptsSignedEvent(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	payload := []byte(`{"id":"evt_1","type":"some.unhandled.event","data":{"object":{}}}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signStripePayload(payload, testSecret, time.Now()))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
