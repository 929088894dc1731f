package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agency_crm_backend/internal/email"
	"agency_crm_backend/internal/notification"
	"agency_crm_backend/internal/scheduler"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting notification worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender email.Sender = email.NoopSender{}
	if cfg.IsSMTPEnabled() {
		sender = email.NewSMTPSender(cfg)
	} else {
		log.Warn("SMTP_HOST not configured; queued emails are dropped")
	}

	var chat notification.ChatPoster = notification.NoopPoster{}
	if url := cfg.GetSlackWebhookURL(); url != "" {
		chat = notification.NewSlackWebhook(url)
	}

	worker, err := scheduler.NewWorker(cfg, notification.NewDispatcher(sender, chat), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
