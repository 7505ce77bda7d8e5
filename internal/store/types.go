package store

import (
	"context"

	"github.com/mellowdog/pawdesk/internal/domain"
	"github.com/mellowdog/pawdesk/internal/recon"
)

// BatchCeiling is the maximum number of document mutations committed in one
// atomic write batch. The host store enforces a hard limit of 500; staying at
// 400 leaves headroom for the denormalized fields a single link touches.
const BatchCeiling = 400

// ProgressFunc reports per-batch commit progress: the 1-based batch number,
// the total number of batches, and the mutations written so far.
type ProgressFunc func(batch, totalBatches, written int)

// CustomerRepository provides access to the customers collection.
type CustomerRepository interface {
	// ListCustomers retrieves the full customer set.
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)

	// GetCustomer retrieves a single customer by id.
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)

	// UpdateBalance overwrites one customer's cached balance and its
	// lastBalanceUpdate timestamp.
	UpdateBalance(ctx context.Context, id string, balance int64, updatedAt string) error
}

// TransactionRepository provides access to the transactions collection.
type TransactionRepository interface {
	// ListUnlinkedIncomeTransactions retrieves income entries lacking a
	// customerId.
	ListUnlinkedIncomeTransactions(ctx context.Context) ([]*domain.Transaction, error)

	// ListIncomeTransactionsSince retrieves income entries with a startDate
	// at or after the given "YYYY-MM-DD" cutoff.
	ListIncomeTransactionsSince(ctx context.Context, cutoffDate string) ([]*domain.Transaction, error)

	// ListCustomerIncomeTransactions retrieves all income entries already
	// linked to the given customer, with no date restriction.
	ListCustomerIncomeTransactions(ctx context.Context, customerID string) ([]*domain.Transaction, error)
}

// ReconWriter persists operator-approved reconciliation results in atomic
// batches of at most BatchCeiling mutations. Batches are independent: a
// failure aborts that batch and everything after it, but earlier batches
// stand.
type ReconWriter interface {
	// CommitMatches backfills customerId and the denormalized name, contact
	// and breed fields onto the transactions of the approved pairs.
	CommitMatches(ctx context.Context, pairs []recon.MatchPair, progress ProgressFunc) error

	// CommitBalances writes the recomputed balance and lastBalanceUpdate for
	// every preview row.
	CommitBalances(ctx context.Context, rows []recon.PreviewRow, updatedAt string, progress ProgressFunc) error
}

// ReportRunRepository tracks daily-report drafting attempts.
type ReportRunRepository interface {
	// CreateReportRun inserts a run with status=PENDING and returns its id.
	CreateReportRun(ctx context.Context, run *domain.ReportRun) (string, error)

	// MarkReportRunRunning sets status=RUNNING.
	MarkReportRunRunning(ctx context.Context, runID string) error

	// MarkReportRunFailed sets status=FAILED with the error message.
	MarkReportRunFailed(ctx context.Context, runID string, runErr error)

	// MarkReportRunSucceeded sets status=SUCCESS and stores the draft JSON.
	MarkReportRunSucceeded(ctx context.Context, runID string, draftJSON string) error

	// GetReportRun retrieves a run by id.
	GetReportRun(ctx context.Context, runID string) (*domain.ReportRun, error)
}
