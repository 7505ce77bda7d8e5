// Package reconcile orchestrates the reconciliation workflows: loading the
// collections, running the pure matcher/aggregator core, and committing
// operator-approved results through the batched store writer.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mellowdog/pawdesk/internal/logger"
	"github.com/mellowdog/pawdesk/internal/recon"
	"github.com/mellowdog/pawdesk/internal/store"
)

// Service wires the repositories to the reconciliation core. All work is
// operator-triggered and runs to completion; there is no background
// scheduling and no retry of our own.
type Service struct {
	customers store.CustomerRepository
	txs       store.TransactionRepository
	writer    store.ReconWriter

	session *recon.Session
}

// NewService creates a Service over the given repositories.
func NewService(customers store.CustomerRepository, txs store.TransactionRepository, writer store.ReconWriter) *Service {
	return &Service{
		customers: customers,
		txs:       txs,
		writer:    writer,
		session:   recon.NewSession(),
	}
}

// Session exposes the bulk recalculation workflow state.
func (s *Service) Session() *recon.Session {
	return s.session
}

// Scan loads the customer set and the unlinked income transactions and
// proposes candidate links. A read failure aborts the whole scan; there are
// no partial results.
func (s *Service) Scan(ctx context.Context) (recon.MatchResult, error) {
	log := logger.FromContext(ctx)

	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return recon.MatchResult{}, fmt.Errorf("Scan: loading customers: %w", err)
	}
	unlinked, err := s.txs.ListUnlinkedIncomeTransactions(ctx)
	if err != nil {
		return recon.MatchResult{}, fmt.Errorf("Scan: loading unlinked transactions: %w", err)
	}

	res := recon.Match(customers, unlinked)

	log.Info().
		Int("customers", len(customers)).
		Int("unlinked", len(unlinked)).
		Int("candidates", len(res.Pairs)).
		Int("skipped_no_dog_name", res.SkippedNoDogName).
		Int("unmatched", res.UnmatchedCount).
		Msg("Link scan complete")

	return res, nil
}

// CommitPairs writes the operator-approved subset of a scan's candidates.
func (s *Service) CommitPairs(ctx context.Context, pairs []recon.MatchPair, progress store.ProgressFunc) error {
	if len(pairs) == 0 {
		return nil
	}
	if err := s.writer.CommitMatches(ctx, pairs, progress); err != nil {
		return fmt.Errorf("CommitPairs: %w", err)
	}
	return nil
}

// Calculate loads everything since the cutoff and produces the bulk balance
// preview, replacing any previous uncommitted one. cutoffDate empty means the
// default historical cutoff.
func (s *Service) Calculate(ctx context.Context, cutoffDate string) (*recon.RecalcResult, error) {
	log := logger.FromContext(ctx)

	if cutoffDate == "" {
		cutoffDate = recon.DefaultCutoffDate
	}

	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("Calculate: loading customers: %w", err)
	}
	txs, err := s.txs.ListIncomeTransactionsSince(ctx, cutoffDate)
	if err != nil {
		return nil, fmt.Errorf("Calculate: loading transactions: %w", err)
	}

	res := s.session.Calculate(recon.RecalcInput{
		Customers:    customers,
		Transactions: txs,
		CutoffDate:   cutoffDate,
	})

	log.Info().
		Int("rows", len(res.Rows)).
		Int("matched", res.MatchedCount).
		Int("unmatched", res.UnmatchedCount).
		Int64("receivable", res.Totals.Receivable).
		Int64("credit", res.Totals.Credit).
		Msg("Balance recalculation complete")

	return res, nil
}

// CommitBalances writes the current preview. Batches are independent; the
// per-batch progress callback is how partial overall progress reaches the
// operator when a later batch fails.
func (s *Service) CommitBalances(ctx context.Context, progress store.ProgressFunc) error {
	if st := s.session.State(); st != recon.StateCalculated {
		return fmt.Errorf("CommitBalances: no preview to commit (state %s)", st)
	}
	preview := s.session.Preview()
	if preview == nil || len(preview.Rows) == 0 {
		return fmt.Errorf("CommitBalances: preview is empty")
	}

	updatedAt := time.Now().UTC().Format(time.RFC3339)
	if err := s.writer.CommitBalances(ctx, preview.Rows, updatedAt, progress); err != nil {
		return fmt.Errorf("CommitBalances: %w", err)
	}
	return s.session.MarkCommitted()
}

// RefreshCustomer recomputes one customer's balance from its linked income
// history and writes it immediately: no preview step, no zero suppression.
func (s *Service) RefreshCustomer(ctx context.Context, customerID string) (int64, error) {
	txs, err := s.txs.ListCustomerIncomeTransactions(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("RefreshCustomer: loading transactions for %s: %w", customerID, err)
	}

	balance := recon.RefreshBalance(txs)
	updatedAt := time.Now().UTC().Format(time.RFC3339)
	if err := s.customers.UpdateBalance(ctx, customerID, balance, updatedAt); err != nil {
		return 0, fmt.Errorf("RefreshCustomer: %w", err)
	}
	return balance, nil
}

// LogProgress returns a ProgressFunc that reports batch progress through the
// given logger.
func LogProgress(log zerolog.Logger) store.ProgressFunc {
	return func(batch, totalBatches, written int) {
		log.Info().
			Int("batch", batch).
			Int("total_batches", totalBatches).
			Int("written", written).
			Msg("Batch committed")
	}
}
