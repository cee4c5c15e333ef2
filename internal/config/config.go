package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	DiscordToken        string `env:"DISCORD_TOKEN,required"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePremiumPrice  string `env:"STRIPE_PRICE_BOT_PREMIUM_MONTHLY"`
	AppURL              string `env:"APP_URL" envDefault:"https://squadplanner.fr"`
	APIPort             string `env:"API_PORT" envDefault:"8080"`
}

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
