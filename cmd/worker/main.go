package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mellowdog/pawdesk/internal/domain"
	infraFS "github.com/mellowdog/pawdesk/internal/infra/firestore"
	"github.com/mellowdog/pawdesk/internal/jobs"
	"github.com/mellowdog/pawdesk/internal/jobs/inmemory"
	"github.com/mellowdog/pawdesk/internal/logger"
	"github.com/mellowdog/pawdesk/internal/media"
	"github.com/mellowdog/pawdesk/internal/report"
)

func main() {
	var (
		project = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project ID (or set GOOGLE_CLOUD_PROJECT env)")
		model   = flag.String("model", report.DefaultModelName, "Gemini model for daily report drafts")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New("worker")

	if *project == "" {
		log.Fatal().Msg("No GCP project configured - set --project or GOOGLE_CLOUD_PROJECT")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := infraFS.NewRepository(ctx, *project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store repository")
	}
	defer repo.Close()

	reportPipeline := report.NewPipeline(repo, report.NewGeminiDrafter(*model), media.NewService())

	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Msg("Starting worker service")

	// Create job handler that drafts daily reports
	handler := func(ctx context.Context, job jobs.Job) error {
		reportJob, ok := job.(*jobs.GenerateReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", reportJob.JobID).
			Str("customer_id", reportJob.CustomerID).
			Str("dog", reportJob.DogName).
			Msg("Processing report job")

		ctx = logger.WithContext(ctx, log)

		run := &domain.ReportRun{
			CustomerID: reportJob.CustomerID,
			DogName:    reportJob.DogName,
			VisitDate:  reportJob.VisitDate,
			Notes:      reportJob.Notes,
			PhotoURIs:  reportJob.PhotoURIs,
		}

		runID, err := reportPipeline.Generate(ctx, run)
		reportJob.RunID = runID
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", reportJob.JobID).
				Str("run_id", runID).
				Msg("Report drafting failed")
			return err
		}

		log.Info().
			Str("job_id", reportJob.JobID).
			Str("run_id", runID).
			Msg("Report drafting completed successfully")

		return nil
	}

	// Start consuming jobs
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
