package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mellowdog/pawdesk/internal/api/handlers"
	"github.com/mellowdog/pawdesk/internal/api/middleware"
	"github.com/mellowdog/pawdesk/internal/domain"
	infraFS "github.com/mellowdog/pawdesk/internal/infra/firestore"
	"github.com/mellowdog/pawdesk/internal/jobs"
	"github.com/mellowdog/pawdesk/internal/jobs/inmemory"
	"github.com/mellowdog/pawdesk/internal/logger"
	"github.com/mellowdog/pawdesk/internal/media"
	"github.com/mellowdog/pawdesk/internal/reconcile"
	"github.com/mellowdog/pawdesk/internal/report"
)

func main() {
	// Parse command-line flags
	var (
		port    = flag.String("port", "8080", "HTTP server port")
		project = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project ID (or set GOOGLE_CLOUD_PROJECT env)")
		model   = flag.String("model", report.DefaultModelName, "Gemini model for daily report drafts")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New("api")

	if *project == "" {
		log.Fatal().Msg("No GCP project configured - set --project or GOOGLE_CLOUD_PROJECT")
	}

	// Initialize repositories
	ctx := context.Background()

	repo, err := infraFS.NewRepository(ctx, *project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store repository")
	}
	defer repo.Close()

	reconSvc := reconcile.NewService(repo, repo, repo)
	reportPipeline := report.NewPipeline(repo, report.NewGeminiDrafter(*model), media.NewService())

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Create job handler for drafting daily reports
	jobHandler := func(ctx context.Context, job jobs.Job) error {
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

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	reconHandler := handlers.NewReconHandler(reconSvc, log)
	reportsHandler := handlers.NewReportsHandler(jobQueue, repo, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Reconciliation endpoints
	mux.HandleFunc("/api/recon/scan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reconHandler.ScanLinks(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/recon/links", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reconHandler.CommitLinks(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/recon/recalculate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reconHandler.Recalculate(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/recon/preview", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reconHandler.GetPreview(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/recon/commit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reconHandler.CommitBalances(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Customer endpoints
	mux.HandleFunc("/api/customers/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/customers/")
		if r.Method == http.MethodPost && strings.HasSuffix(rest, "/refresh-balance") {
			customerID := strings.TrimSuffix(rest, "/refresh-balance")
			reconHandler.RefreshBalance(w, r, customerID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Daily report endpoints
	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reportsHandler.EnqueueReport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/reports/runs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			runID := strings.TrimPrefix(r.URL.Path, "/api/reports/runs/")
			if runID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Run ID is required")
				return
			}
			reportsHandler.GetReportRun(w, r, runID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
