package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/ports"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/metrics"
)

// AlertActivities holds the activity implementations for the alert
// notification workflow.
type AlertActivities struct {
	Donors    ports.DonorRepository
	Notifier  ports.NotificationService
	Publisher ports.EventPublisher
}

// NotifyDonor sends a push notification asking the donor to respond.
func (a *AlertActivities) NotifyDonor(ctx context.Context, donorID int64, hospitalName, bloodType string, distanceKm float64) error {
	if a.Notifier == nil {
		log.Printf("PUSH (no notifier) → donor=%d hospital=%s blood=%s", donorID, hospitalName, bloodType)
		return nil
	}

	// Resolve the donor so the message can address them by name.
	donor, err := a.Donors.GetByID(ctx, donorID)
	if err != nil {
		return fmt.Errorf("get donor %d: %w", donorID, err)
	}

	title := fmt.Sprintf("Urgent: %s blood needed", bloodType)
	body := fmt.Sprintf("%s, %s needs %s blood. You are %.1f km away — can you help?",
		donor.Name, hospitalName, bloodType, distanceKm)

	if err := a.Notifier.SendPush(ctx, donorID, title, body); err != nil {
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		return err
	}
	metrics.NotificationsSent.WithLabelValues("sent").Inc()
	return nil
}

// RecordSkippedDonor notes a donor the alert could not reach.
func (a *AlertActivities) RecordSkippedDonor(ctx context.Context, alertID string, donorID int64) error {
	metrics.NotificationsSent.WithLabelValues("skipped").Inc()
	log.Printf("alert %s: donor %d unreachable, skipped", alertID, donorID)
	return nil
}

// PublishAlertSummary broadcasts the final delivery tally for dashboards.
func (a *AlertActivities) PublishAlertSummary(ctx context.Context, summary *AlertNotificationSummary) error {
	if a.Publisher == nil {
		return nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return a.Publisher.PublishBroadcast(ctx, data)
}
