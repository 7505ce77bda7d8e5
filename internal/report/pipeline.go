// Package report drafts parent-facing daily reports from staff handover
// notes. The pipeline is sequential: create a run record, draft with the
// model, transform to a structured draft, persist. A failed step marks the
// run FAILED and stops; re-running creates a fresh run.
package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mellowdog/pawdesk/internal/blob"
	"github.com/mellowdog/pawdesk/internal/domain"
	"github.com/mellowdog/pawdesk/internal/logger"
	"github.com/mellowdog/pawdesk/internal/store"
)

// Pipeline holds the collaborators of the daily-report workflow.
type Pipeline struct {
	runs    store.ReportRunRepository
	drafter Drafter
	storage blob.StorageService
}

// NewPipeline creates a Pipeline.
func NewPipeline(runs store.ReportRunRepository, drafter Drafter, storage blob.StorageService) *Pipeline {
	return &Pipeline{runs: runs, drafter: drafter, storage: storage}
}

// Generate runs the full drafting pipeline for one visit and returns the run
// id. The run record carries the terminal status either way.
func (p *Pipeline) Generate(ctx context.Context, run *domain.ReportRun) (string, error) {
	log := logger.FromContext(ctx)

	// 1. Create the run record (status=PENDING).
	runID, err := p.runs.CreateReportRun(ctx, run)
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}
	log.Info().Str("run_id", runID).Str("dog", run.DogName).Str("visit_date", run.VisitDate).
		Msg("Daily report run created")

	if err := p.runs.MarkReportRunRunning(ctx, runID); err != nil {
		return runID, fmt.Errorf("Generate: %w", err)
	}

	// 2. Verify photo attachments exist before spending model tokens.
	for _, uri := range run.PhotoURIs {
		if _, err := p.storage.Fetch(ctx, uri); err != nil {
			p.runs.MarkReportRunFailed(ctx, runID, err)
			return runID, fmt.Errorf("Generate: fetching photo %s: %w", uri, err)
		}
	}

	// 3. Draft with the model.
	rawOutput, err := p.drafter.DraftReport(ctx, run)
	if err != nil {
		p.runs.MarkReportRunFailed(ctx, runID, err)
		return runID, fmt.Errorf("Generate: %w", err)
	}

	// 4. Transform into a structured draft.
	draft, err := transformModelOutputToDraft(rawOutput)
	if err != nil {
		p.runs.MarkReportRunFailed(ctx, runID, err)
		return runID, fmt.Errorf("Generate: %w", err)
	}
	draft.PhotoURLs = run.PhotoURIs

	// 5. Persist the draft on the run record.
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		p.runs.MarkReportRunFailed(ctx, runID, err)
		return runID, fmt.Errorf("Generate: marshaling draft: %w", err)
	}
	if err := p.runs.MarkReportRunSucceeded(ctx, runID, string(draftJSON)); err != nil {
		return runID, fmt.Errorf("Generate: %w", err)
	}

	log.Info().Str("run_id", runID).Msg("Daily report drafted")
	return runID, nil
}
