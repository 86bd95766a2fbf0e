package main

import (
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/barkai-yeshivah/payment-api/internal/config"
	"github.com/barkai-yeshivah/payment-api/internal/dotenv"
	"github.com/barkai-yeshivah/payment-api/internal/log"
	"github.com/barkai-yeshivah/payment-api/internal/server"
	"github.com/barkai-yeshivah/payment-api/internal/stripe"
)

func main() {
	if _, err := dotenv.LoadNearest(".env"); err != nil {
		stdlog.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("load config: %v", err)
	}

	logger := log.NewStdLogger(os.Stderr, log.ParseLevel(cfg.LogLevel))

	client, err := stripe.NewClient(
		stripe.WithAPIKey(cfg.StripeAPIKey),
		stripe.WithTimeout(cfg.StripeTimeout),
		stripe.WithLogger(logger),
		stripe.WithLogHTTPBodies(cfg.LogHTTPBodies),
	)
	if err != nil {
		stdlog.Fatalf("create stripe client: %v", err)
	}

	srv := server.New(client.Checkout(), logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-done
		logger.Infof("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}()

	logger.Infof("Payment API running on port %d", cfg.Port)
	if err := srv.Listen(cfg.Port); err != nil {
		stdlog.Fatalf("listen: %v", err)
	}
}
