package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mellowdog/pawdesk/internal/domain"
	"github.com/mellowdog/pawdesk/internal/jobs"
	"github.com/mellowdog/pawdesk/internal/recon"
	"github.com/mellowdog/pawdesk/internal/reconcile"
	"github.com/mellowdog/pawdesk/internal/store"
)

// fakeStore implements the store repositories over in-memory slices.
type fakeStore struct {
	customers []*domain.Customer
	txs       []*domain.Transaction

	committedPairs    []recon.MatchPair
	committedBalances []recon.PreviewRow
	updatedBalances   map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{updatedBalances: make(map[string]int64)}
}

func (f *fakeStore) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return f.customers, nil
}

func (f *fakeStore) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("customer not found: %s", id)
}

func (f *fakeStore) UpdateBalance(ctx context.Context, id string, balance int64, updatedAt string) error {
	f.updatedBalances[id] = balance
	return nil
}

func (f *fakeStore) ListUnlinkedIncomeTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range f.txs {
		if t.IsIncome() && t.CustomerID == "" {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListIncomeTransactionsSince(ctx context.Context, cutoffDate string) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range f.txs {
		if t.IsIncome() && t.StartDate >= cutoffDate {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCustomerIncomeTransactions(ctx context.Context, customerID string) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range f.txs {
		if t.IsIncome() && t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) CommitMatches(ctx context.Context, pairs []recon.MatchPair, progress store.ProgressFunc) error {
	f.committedPairs = append(f.committedPairs, pairs...)
	return nil
}

func (f *fakeStore) CommitBalances(ctx context.Context, rows []recon.PreviewRow, updatedAt string, progress store.ProgressFunc) error {
	f.committedBalances = append(f.committedBalances, rows...)
	return nil
}

// fakePublisher records published report jobs.
type fakePublisher struct {
	published []*jobs.GenerateReportJob
	err       error
}

func (f *fakePublisher) PublishGenerateReport(ctx context.Context, job *jobs.GenerateReportJob) error {
	if f.err != nil {
		return f.err
	}
	job.JobID = "job-1"
	job.Status = jobs.JobStatusPending
	f.published = append(f.published, job)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newReconHandler(fs *fakeStore) *ReconHandler {
	svc := reconcile.NewService(fs, fs, fs)
	return NewReconHandler(svc, zerolog.Nop())
}

func TestScanAndCommitLinks(t *testing.T) {
	fs := newFakeStore()
	fs.customers = []*domain.Customer{
		{ID: "c1", DogName: "Coco", OwnerName: "Kim Jiyoung", Phone: "010-1234-5678"},
		{ID: "c2", DogName: "Bori", OwnerName: "Lee Minho", Phone: "010-9876-4321"},
	}
	fs.txs = []*domain.Transaction{
		{ID: "t1", Type: domain.TransactionTypeIncome, DogName: "Coco", Contact: "5678"},
		{ID: "t2", Type: domain.TransactionTypeIncome, DogName: "Bori", CustomerName: "Lee Minho"},
	}

	h := newReconHandler(fs)

	rec := httptest.NewRecorder()
	h.ScanLinks(rec, httptest.NewRequest(http.MethodPost, "/api/recon/scan", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scan status = %d, want 200", rec.Code)
	}

	var scanResp struct {
		Candidates []candidateView `json:"candidates"`
		Count      int             `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&scanResp); err != nil {
		t.Fatalf("decoding scan response: %v", err)
	}
	if scanResp.Count != 2 {
		t.Fatalf("candidates = %d, want 2", scanResp.Count)
	}

	// Approve only the first candidate.
	body, _ := json.Marshal(map[string][]string{"transaction_ids": {"t1"}})
	rec = httptest.NewRecorder()
	h.CommitLinks(rec, httptest.NewRequest(http.MethodPost, "/api/recon/links", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(fs.committedPairs) != 1 || fs.committedPairs[0].Transaction.ID != "t1" {
		t.Errorf("committed pairs = %+v, want only t1", fs.committedPairs)
	}

	// The scan is consumed by the commit.
	rec = httptest.NewRecorder()
	h.CommitLinks(rec, httptest.NewRequest(http.MethodPost, "/api/recon/links", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("second commit status = %d, want 409", rec.Code)
	}
}

func TestRecalculatePreviewCommit(t *testing.T) {
	fs := newFakeStore()
	fs.customers = []*domain.Customer{
		{ID: "c1", DogName: "Coco", Balance: 0},
	}
	fs.txs = []*domain.Transaction{
		{ID: "t1", Type: domain.TransactionTypeIncome, CustomerID: "c1",
			Price: 30000, Quantity: 1, PaidAmount: 10000, StartDate: "2024-03-01"},
	}

	h := newReconHandler(fs)

	// Preview before any calculation is a 404.
	rec := httptest.NewRecorder()
	h.GetPreview(rec, httptest.NewRequest(http.MethodGet, "/api/recon/preview", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("preview status = %d, want 404", rec.Code)
	}

	// Commit before any calculation is rejected.
	rec = httptest.NewRecorder()
	h.CommitBalances(rec, httptest.NewRequest(http.MethodPost, "/api/recon/commit", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("early commit status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Recalculate(rec, httptest.NewRequest(http.MethodPost, "/api/recon/recalculate", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("recalculate status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var calcResp struct {
		Rows  []recon.PreviewRow `json:"rows"`
		State string             `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&calcResp); err != nil {
		t.Fatalf("decoding recalculate response: %v", err)
	}
	if len(calcResp.Rows) != 1 || calcResp.Rows[0].Balance != -20000 {
		t.Fatalf("rows = %+v, want one row with balance -20000", calcResp.Rows)
	}
	if calcResp.State != string(recon.StateCalculated) {
		t.Errorf("state = %s, want calculated", calcResp.State)
	}

	rec = httptest.NewRecorder()
	h.GetPreview(rec, httptest.NewRequest(http.MethodGet, "/api/recon/preview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.CommitBalances(rec, httptest.NewRequest(http.MethodPost, "/api/recon/commit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(fs.committedBalances) != 1 {
		t.Errorf("committed rows = %d, want 1", len(fs.committedBalances))
	}

	// Double commit is rejected.
	rec = httptest.NewRecorder()
	h.CommitBalances(rec, httptest.NewRequest(http.MethodPost, "/api/recon/commit", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("double commit status = %d, want 409", rec.Code)
	}
}

func TestRefreshBalance(t *testing.T) {
	fs := newFakeStore()
	fs.txs = []*domain.Transaction{
		{ID: "t1", Type: domain.TransactionTypeIncome, CustomerID: "c1",
			Price: 50000, Quantity: 1, PaidAmount: 40000, StartDate: "2023-06-01"},
	}

	h := newReconHandler(fs)

	rec := httptest.NewRecorder()
	h.RefreshBalance(rec, httptest.NewRequest(http.MethodPost, "/api/customers/c1/refresh-balance", nil), "c1")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if fs.updatedBalances["c1"] != -10000 {
		t.Errorf("stored balance = %d, want -10000", fs.updatedBalances["c1"])
	}

	rec = httptest.NewRecorder()
	h.RefreshBalance(rec, httptest.NewRequest(http.MethodPost, "/api/customers//refresh-balance", nil), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty id status = %d, want 400", rec.Code)
	}
}

func TestEnqueueReport(t *testing.T) {
	pub := &fakePublisher{}
	h := NewReportsHandler(pub, nil, zerolog.Nop())

	body, _ := json.Marshal(map[string]interface{}{
		"customer_id": "c1",
		"dog_name":    "Coco",
		"visit_date":  "2026-08-31",
		"notes":       "ate well, long walk",
	})
	rec := httptest.NewRecorder()
	h.EnqueueReport(rec, httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if len(pub.published) != 1 || pub.published[0].CustomerID != "c1" {
		t.Fatalf("published = %+v, want one job for c1", pub.published)
	}

	// visit_date is required.
	body, _ = json.Marshal(map[string]string{"customer_id": "c1"})
	rec = httptest.NewRecorder()
	h.EnqueueReport(rec, httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing visit_date status = %d, want 400", rec.Code)
	}
}
