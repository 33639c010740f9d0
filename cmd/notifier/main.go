package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/SomeLazyDayz/Backend-15-11/internal/adapters/nats"
	"github.com/SomeLazyDayz/Backend-15-11/internal/adapters/postgres"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/config"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/logging"
	"github.com/SomeLazyDayz/Backend-15-11/internal/workflows"
)

// The notifier bridges alert events into Temporal: every alert published
// on NATS starts an AlertNotificationWorkflow that fans push messages
// out to the shortlisted donors.
func main() {
	cfg, err := config.Load("bloodlink-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.AlertNotificationWorkflow)
	w.RegisterActivity(&workflows.AlertActivities{
		Donors:    postgres.NewDonorRepo(db),
		Publisher: publisher,
		// Notifier stays nil until a push provider is wired in;
		// activities log the message instead of sending it.
	})

	// Every durable alert event starts a notification workflow.
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	err = subscriber.SubscribeAlerts(ctx, func(ctx context.Context, event *domain.AlertEvent) error {
		opts := client.StartWorkflowOptions{
			ID:        "alert-notify-" + event.AlertID,
			TaskQueue: cfg.Temporal.TaskQueue,
		}
		input := workflows.AlertNotificationInput{
			AlertID:      event.AlertID,
			HospitalName: event.HospitalName,
			BloodType:    event.BloodType,
			Matches:      event.Matches,
		}
		run, err := c.ExecuteWorkflow(ctx, opts, workflows.AlertNotificationWorkflow, input)
		if err != nil {
			slog.Error("start notification workflow", "alert_id", event.AlertID, "error", err)
			return err
		}
		slog.Info("notification workflow started",
			"alert_id", event.AlertID, "workflow_id", run.GetID(), "donors", len(event.Matches))
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe alerts: %v", err)
	}

	log.Println("notifier worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
