package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mellowdog/pawdesk/internal/domain"
)

// CreateReportRun inserts a run with status=PENDING and returns its id.
func (r *Repository) CreateReportRun(ctx context.Context, run *domain.ReportRun) (string, error) {
	runID := uuid.NewString()

	run.Status = domain.ReportRunPending
	run.StartedAt = time.Now().UTC().Format(time.RFC3339)

	_, err := r.client.Collection(reportRunsCollection).Doc(runID).Create(ctx, run)
	if err != nil {
		return "", fmt.Errorf("CreateReportRun: creating run: %w", err)
	}
	return runID, nil
}

// MarkReportRunRunning sets status=RUNNING.
func (r *Repository) MarkReportRunRunning(ctx context.Context, runID string) error {
	_, err := r.client.Collection(reportRunsCollection).Doc(runID).Update(ctx, []firestore.Update{
		{Path: "status", Value: domain.ReportRunRunning},
	})
	if err != nil {
		return fmt.Errorf("MarkReportRunRunning: updating run %s: %w", runID, err)
	}
	return nil
}

// MarkReportRunFailed sets status=FAILED with the error message. Best effort:
// the original drafting error matters more than a status write failing, so
// this logs instead of returning.
func (r *Repository) MarkReportRunFailed(ctx context.Context, runID string, runErr error) {
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	_, err := r.client.Collection(reportRunsCollection).Doc(runID).Update(ctx, []firestore.Update{
		{Path: "status", Value: domain.ReportRunFailed},
		{Path: "errorMessage", Value: errMsg},
		{Path: "finishedAt", Value: time.Now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkReportRunFailed: status update failed")
	}
}

// MarkReportRunSucceeded sets status=SUCCESS and stores the draft JSON.
func (r *Repository) MarkReportRunSucceeded(ctx context.Context, runID string, draftJSON string) error {
	_, err := r.client.Collection(reportRunsCollection).Doc(runID).Update(ctx, []firestore.Update{
		{Path: "status", Value: domain.ReportRunSuccess},
		{Path: "draftJson", Value: draftJSON},
		{Path: "errorMessage", Value: ""},
		{Path: "finishedAt", Value: time.Now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		return fmt.Errorf("MarkReportRunSucceeded: updating run %s: %w", runID, err)
	}
	return nil
}

// GetReportRun retrieves a run by id.
func (r *Repository) GetReportRun(ctx context.Context, runID string) (*domain.ReportRun, error) {
	doc, err := r.client.Collection(reportRunsCollection).Doc(runID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetReportRun: reading run %s: %w", runID, err)
	}

	var run domain.ReportRun
	if err := doc.DataTo(&run); err != nil {
		return nil, fmt.Errorf("GetReportRun: decoding run %s: %w", runID, err)
	}
	run.ID = doc.Ref.ID
	return &run, nil
}
