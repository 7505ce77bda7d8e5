package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mellowdog/pawdesk/internal/api/middleware"
	"github.com/mellowdog/pawdesk/internal/jobs"
	"github.com/mellowdog/pawdesk/internal/recon"
	"github.com/mellowdog/pawdesk/internal/reconcile"
	"github.com/mellowdog/pawdesk/internal/store"
)

// ReconHandler handles link-scan and balance-recalculation endpoints.
// The last scan's candidates are held in memory so the operator can approve
// a subset; a new scan replaces them.
type ReconHandler struct {
	svc *reconcile.Service
	log zerolog.Logger

	mu       sync.Mutex
	lastScan *recon.MatchResult
}

// NewReconHandler creates a new reconciliation handler.
func NewReconHandler(svc *reconcile.Service, log zerolog.Logger) *ReconHandler {
	return &ReconHandler{
		svc: svc,
		log: log,
	}
}

// candidateView is the wire shape of one proposed link.
type candidateView struct {
	TransactionID string `json:"transaction_id"`
	CustomerID    string `json:"customer_id"`
	DogName       string `json:"dog_name"`
	OwnerName     string `json:"owner_name,omitempty"`
	Tier          string `json:"tier"`
}

// ScanLinks handles POST /api/recon/scan
func (h *ReconHandler) ScanLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.svc.Scan(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Link scan failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Link scan failed")
		return
	}

	h.mu.Lock()
	h.lastScan = &res
	h.mu.Unlock()

	candidates := make([]candidateView, 0, len(res.Pairs))
	for _, p := range res.Pairs {
		candidates = append(candidates, candidateView{
			TransactionID: p.Transaction.ID,
			CustomerID:    p.Customer.ID,
			DogName:       p.Customer.DogName,
			OwnerName:     p.Customer.OwnerName,
			Tier:          string(p.Tier),
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"candidates":          candidates,
		"count":               len(candidates),
		"skipped_no_dog_name": res.SkippedNoDogName,
		"unmatched":           res.UnmatchedCount,
	})
}

// CommitLinks handles POST /api/recon/links
// The body may name a subset of the last scan's transaction IDs; an empty
// body approves every candidate.
func (h *ReconHandler) CommitLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		TransactionIDs []string `json:"transaction_ids"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	h.mu.Lock()
	scan := h.lastScan
	h.mu.Unlock()

	if scan == nil {
		middleware.WriteError(w, http.StatusConflict, "No scan to commit; run a scan first")
		return
	}

	pairs := scan.Pairs
	if len(req.TransactionIDs) > 0 {
		approved := make(map[string]bool, len(req.TransactionIDs))
		for _, id := range req.TransactionIDs {
			approved[id] = true
		}
		subset := make([]recon.MatchPair, 0, len(req.TransactionIDs))
		for _, p := range pairs {
			if approved[p.Transaction.ID] {
				subset = append(subset, p)
			}
		}
		pairs = subset
	}

	if err := h.svc.CommitPairs(ctx, pairs, reconcile.LogProgress(h.log)); err != nil {
		h.log.Error().Err(err).Msg("Failed to commit links")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to commit links")
		return
	}

	h.mu.Lock()
	h.lastScan = nil
	h.mu.Unlock()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"linked": len(pairs),
	})
}

// Recalculate handles POST /api/recon/recalculate
func (h *ReconHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		CutoffDate string `json:"cutoff_date"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	res, err := h.svc.Calculate(ctx, req.CutoffDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Balance recalculation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Balance recalculation failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rows":      res.Rows,
		"totals":    res.Totals,
		"matched":   res.MatchedCount,
		"unmatched": res.UnmatchedCount,
		"state":     h.svc.Session().State(),
	})
}

// GetPreview handles GET /api/recon/preview
func (h *ReconHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	preview := h.svc.Session().Preview()
	if preview == nil {
		middleware.WriteError(w, http.StatusNotFound, "No preview; run a recalculation first")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rows":   preview.Rows,
		"totals": preview.Totals,
		"state":  h.svc.Session().State(),
	})
}

// CommitBalances handles POST /api/recon/commit
func (h *ReconHandler) CommitBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.CommitBalances(ctx, reconcile.LogProgress(h.log)); err != nil {
		h.log.Error().Err(err).Msg("Failed to commit balances")
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"state": h.svc.Session().State(),
	})
}

// RefreshBalance handles POST /api/customers/{id}/refresh-balance
func (h *ReconHandler) RefreshBalance(w http.ResponseWriter, r *http.Request, customerID string) {
	ctx := r.Context()

	if customerID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Customer ID is required")
		return
	}

	balance, err := h.svc.RefreshCustomer(ctx, customerID)
	if err != nil {
		h.log.Error().Err(err).Str("customer_id", customerID).Msg("Failed to refresh balance")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to refresh balance")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id": customerID,
		"balance":     balance,
	})
}

// ReportsHandler handles daily-report endpoints.
type ReportsHandler struct {
	publisher jobs.Publisher
	runs      store.ReportRunRepository
	log       zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(publisher jobs.Publisher, runs store.ReportRunRepository, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		publisher: publisher,
		runs:      runs,
		log:       log,
	}
}

// EnqueueReport handles POST /api/reports
func (h *ReportsHandler) EnqueueReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string   `json:"customer_id"`
		DogName    string   `json:"dog_name"`
		VisitDate  string   `json:"visit_date"`
		Notes      string   `json:"notes"`
		PhotoURIs  []string `json:"photo_uris"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CustomerID == "" || req.VisitDate == "" {
		middleware.WriteError(w, http.StatusBadRequest, "customer_id and visit_date are required")
		return
	}

	ctx := r.Context()

	job := &jobs.GenerateReportJob{
		CustomerID: req.CustomerID,
		DogName:    req.DogName,
		VisitDate:  req.VisitDate,
		Notes:      req.Notes,
		PhotoURIs:  req.PhotoURIs,
	}

	if err := h.publisher.PublishGenerateReport(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue report job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue report job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("customer_id", req.CustomerID).Msg("Report job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":      job.JobID,
		"customer_id": req.CustomerID,
		"status":      string(job.Status),
	})
}

// GetReportRun handles GET /api/reports/runs/{id}
func (h *ReportsHandler) GetReportRun(w http.ResponseWriter, r *http.Request, runID string) {
	ctx := r.Context()

	run, err := h.runs.GetReportRun(ctx, runID)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get report run")
		middleware.WriteError(w, http.StatusNotFound, "Report run not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, run)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		CustomerID: query.Get("customer_id"),
		Status:     jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
