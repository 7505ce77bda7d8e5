// Package ledgerexport pushes reconciliation results into BigQuery so the
// owner can chart receivables over time. The document store stays the source
// of truth; the analytics dataset is append-only and rebuildable.
package ledgerexport

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// BalanceSnapshotRow is one customer's recomputed balance as of a bulk
// recalculation commit.
type BalanceSnapshotRow struct {
	SnapshotID string `bigquery:"snapshot_id"`
	RunID      string `bigquery:"run_id"`

	CustomerID string `bigquery:"customer_id"`
	DogName    string `bigquery:"dog_name"`
	OwnerName  string `bigquery:"owner_name"`

	Balance         int64 `bigquery:"balance"`
	PreviousBalance int64 `bigquery:"previous_balance"`
	Change          int64 `bigquery:"change"`

	SnapshotDate civil.Date `bigquery:"snapshot_date"`
	CreatedTS    time.Time  `bigquery:"created_ts"`
}

// ReconRunRow records one reconciliation run: a link scan or a bulk balance
// recalculation.
type ReconRunRow struct {
	RunID   string `bigquery:"run_id"`
	RunKind string `bigquery:"run_kind"` // LINK_SCAN or BALANCE_RECALC

	StartedTS  time.Time              `bigquery:"started_ts"`
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"`

	MatchedCount   int64 `bigquery:"matched_count"`
	UnmatchedCount int64 `bigquery:"unmatched_count"`
	CommittedCount int64 `bigquery:"committed_count"`

	TotalReceivable int64 `bigquery:"total_receivable"`
	TotalCredit     int64 `bigquery:"total_credit"`

	Status       string              `bigquery:"status"`
	ErrorMessage bigquery.NullString `bigquery:"error_message"`
}

// Run kinds for ReconRunRow.
const (
	RunKindLinkScan      = "LINK_SCAN"
	RunKindBalanceRecalc = "BALANCE_RECALC"
)
