package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/stripe/stripe-go/v81"

	"github.com/squadplanner/squadbot/internal/api"
	"github.com/squadplanner/squadbot/internal/billing"
	"github.com/squadplanner/squadbot/internal/config"
	"github.com/squadplanner/squadbot/internal/handlers"
	"github.com/squadplanner/squadbot/internal/permissions"
	"github.com/squadplanner/squadbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	stripe.Key = cfg.StripeSecretKey

	ctx := context.Background()
	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer st.Close()

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}

	checker := permissions.NewChecker(st)
	bill := billing.New(st, checker, cfg.StripePremiumPrice, cfg.AppURL)
	bot := handlers.NewBot(dg, st, checker, bill, cfg.AppURL)
	registry := bot.Registry()
	dispatcher := handlers.NewDispatcher(registry, checker)

	dg.AddHandler(dispatcher.Handle)
	dg.AddHandler(bot.ReadyHandler())
	dg.AddHandler(bot.GuildCreateHandler(registry))
	dg.AddHandler(bot.GuildDeleteHandler())

	dg.Identify.Intents = discordgo.IntentsGuilds
	if err = dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}
	defer dg.Close()

	srv := api.NewServer(bill, dg, bot, cfg.StripeWebhookSecret)
	go func() {
		if err := srv.Start(cfg.APIPort); err != nil {
			log.Fatalf("Error starting API server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	log.Println("Squad Planner bot is running. Press Ctrl+C to exit")
	<-stop

	log.Println("Gracefully shutting down.")
}
