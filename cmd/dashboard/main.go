package main

import (
	"context"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"auction-live/internal/dashboard"
	"auction-live/internal/livefeed"
	"auction-live/internal/restapi"
)

func main() {
	if err := godotenv.Load("cmd/dashboard/.env"); err != nil {
		// Env vars may be set directly.
	}

	logFile, _ := os.OpenFile("dashboard.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	log := zerolog.New(logFile).With().Timestamp().Str("svc", "dashboard").Logger()

	gatewayURL := envOr("GATEWAY_URL", "http://localhost:8080")
	feedURL := envOr("FEED_URL", "ws://localhost:8080/events/ws")
	auctionID := envInt("AUCTION_ID", 1)
	userID := envInt("USER_ID", 1)

	api := restapi.NewClient(gatewayURL)
	feed := livefeed.NewSubscriber(feedURL, log)

	d := dashboard.New(api, feed, auctionID, userID, log)
	if err := d.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("dashboard exited")
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
