package scheduler

import (
	"context"
	"fmt"

	"agency_crm_backend/internal/notification"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/metrics"

	"github.com/hibiken/asynq"
)

// Deliverer sends a notification over its channels.
type Deliverer interface {
	Deliver(ctx context.Context, d notification.Delivery) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	deliverer Deliverer
	log       *logger.Logger
}

func NewWorker(cfg config.RedisConfig, deliverer Deliverer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		deliverer: deliverer,
		log:       log,
	}

	mux.HandleFunc(TaskDeliverNotification, w.handleDeliverNotification)

	return w, nil
}

func (w *Worker) handleDeliverNotification(ctx context.Context, task *asynq.Task) error {
	d, err := ParseDeliverNotificationPayload(task)
	if err != nil {
		// A payload that cannot be decoded will never succeed.
		return fmt.Errorf("decode notification: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.deliverer.Deliver(ctx, d); err != nil {
		metrics.RecordSideEffectFailure("notification")
		w.log.WithContext(ctx).SideEffectFailed("deliver "+d.Kind, err)
		return err
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
