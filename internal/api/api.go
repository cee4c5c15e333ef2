// Package api is the bot's small HTTP sidecar: the Stripe webhook receiver
// and a liveness endpoint.
package api

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/squadplanner/squadbot/internal/billing"
)

// ReminderCounter reports pending reminder timers for the health payload.
type ReminderCounter interface {
	PendingReminders() int
}

type Server struct {
	billing       *billing.Service
	session       *discordgo.Session
	reminders     ReminderCounter
	webhookSecret string
	startedAt     time.Time
}

func NewServer(bill *billing.Service, session *discordgo.Session, reminders ReminderCounter, webhookSecret string) *Server {
	return &Server{
		billing:       bill,
		session:       session,
		reminders:     reminders,
		webhookSecret: webhookSecret,
		startedAt:     time.Now(),
	}
}

// Router builds the gin engine; split from Start for tests.
func (srv *Server) Router() *gin.Engine {
	router := gin.Default()
	router.POST("/webhook", srv.handleStripeWebhook())
	router.GET("/health", srv.handleHealth())
	return router
}

func (srv *Server) Start(port string) error {
	log.Println("Starting API on port " + port)
	return srv.Router().Run(":" + port)
}

func (srv *Server) handleStripeWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		const MaxBodyBytes = int64(65536)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			log.Printf("Error reading webhook body: %v", err)
			c.Status(http.StatusServiceUnavailable)
			return
		}

		event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), srv.webhookSecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %v", err)
			c.Status(http.StatusBadRequest)
			return
		}

		if err := srv.billing.HandleWebhookEvent(c.Request.Context(), event); err != nil {
			log.Printf("Error handling %s: %v", event.Type, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	}
}

func (srv *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		guildCount := 0
		if srv.session != nil && srv.session.State != nil {
			guildCount = len(srv.session.State.Guilds)
		}
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"guilds":            guildCount,
			"pending_reminders": srv.reminders.PendingReminders(),
			"uptime_seconds":    int(time.Since(srv.startedAt).Seconds()),
		})
	}
}
