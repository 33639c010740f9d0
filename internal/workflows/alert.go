package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// AlertNotificationInput is the input for the alert notification workflow.
type AlertNotificationInput struct {
	AlertID      string
	HospitalName string
	BloodType    string
	Matches      []domain.AlertMatch
}

// AlertNotificationSummary is returned when the workflow completes.
type AlertNotificationSummary struct {
	AlertID  string
	Notified int
	Skipped  int
}

// AlertNotificationWorkflow pushes a notification to every shortlisted
// donor. Individual delivery failures never abort the alert: the donor
// is recorded as skipped and the loop continues, so one dead device
// token cannot silence the rest of the shortlist.
func AlertNotificationWorkflow(ctx workflow.Context, input AlertNotificationInput) (*AlertNotificationSummary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting alert notification workflow",
		"alertID", input.AlertID, "bloodType", input.BloodType, "donors", len(input.Matches))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	summary := &AlertNotificationSummary{AlertID: input.AlertID}

	for _, match := range input.Matches {
		err := workflow.ExecuteActivity(ctx, "NotifyDonor",
			match.DonorID, input.HospitalName, input.BloodType, match.DistanceKm).Get(ctx, nil)
		if err != nil {
			logger.Warn("donor notification failed, skipping",
				"donorID", match.DonorID, "error", err)
			_ = workflow.ExecuteActivity(ctx, "RecordSkippedDonor",
				input.AlertID, match.DonorID).Get(ctx, nil)
			summary.Skipped++
			continue
		}
		summary.Notified++
	}

	if err := workflow.ExecuteActivity(ctx, "PublishAlertSummary", summary).Get(ctx, nil); err != nil {
		logger.Warn("summary publish failed", "error", err)
	}

	logger.Info("Alert notifications complete",
		"alertID", input.AlertID, "notified", summary.Notified, "skipped", summary.Skipped)
	return summary, nil
}
