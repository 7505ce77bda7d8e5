package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/mellowdog/pawdesk/internal/recon"
	"github.com/mellowdog/pawdesk/internal/store"
)

// runChunked splits items into chunks of at most ceiling and applies each as
// one atomic batch. Batches are independent: when batch N fails, batches
// 1..N-1 stand and N+1.. are not attempted. Recovery is a manual re-run,
// which is safe because committed items drop out of the next scan.
func runChunked[T any](ctx context.Context, items []T, ceiling int, apply func(context.Context, []T) error, progress store.ProgressFunc) error {
	if ceiling <= 0 {
		return fmt.Errorf("runChunked: invalid batch ceiling %d", ceiling)
	}

	totalBatches := (len(items) + ceiling - 1) / ceiling
	written := 0

	for i := 0; i < len(items); i += ceiling {
		end := i + ceiling
		if end > len(items) {
			end = len(items)
		}
		chunk := items[i:end]
		batchNo := i/ceiling + 1

		if err := apply(ctx, chunk); err != nil {
			return fmt.Errorf("runChunked: batch %d/%d (%d writes): %w", batchNo, totalBatches, len(chunk), err)
		}

		written += len(chunk)
		if progress != nil {
			progress(batchNo, totalBatches, written)
		}
	}

	return nil
}

func balanceUpdates(balance int64, updatedAt string) []firestore.Update {
	return []firestore.Update{
		{Path: "balance", Value: balance},
		{Path: "lastBalanceUpdate", Value: updatedAt},
	}
}

// CommitMatches backfills the approved pairs onto their transactions: the
// customer's id, canonical dog and owner names, phone, and breed when the
// transaction has none. Financial fields are never touched.
func (r *Repository) CommitMatches(ctx context.Context, pairs []recon.MatchPair, progress store.ProgressFunc) error {
	apply := func(ctx context.Context, chunk []recon.MatchPair) error {
		batch := r.client.Batch()
		for _, p := range chunk {
			updates := []firestore.Update{
				{Path: "customerId", Value: p.Customer.ID},
				{Path: "dogName", Value: p.Customer.DogName},
				{Path: "customerName", Value: p.Customer.OwnerName},
				{Path: "contact", Value: p.Customer.Phone},
			}
			if p.Transaction.Breed == "" && p.Customer.Breed != "" {
				updates = append(updates, firestore.Update{Path: "breed", Value: p.Customer.Breed})
			}
			ref := r.client.Collection(transactionsCollection).Doc(p.Transaction.ID)
			batch.Update(ref, updates)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing match batch: %w", err)
		}
		return nil
	}

	if err := runChunked(ctx, pairs, store.BatchCeiling, apply, progress); err != nil {
		return fmt.Errorf("CommitMatches: %w", err)
	}
	return nil
}

// CommitBalances writes the recomputed balance and lastBalanceUpdate for
// every preview row.
func (r *Repository) CommitBalances(ctx context.Context, rows []recon.PreviewRow, updatedAt string, progress store.ProgressFunc) error {
	apply := func(ctx context.Context, chunk []recon.PreviewRow) error {
		batch := r.client.Batch()
		for _, row := range chunk {
			ref := r.client.Collection(customersCollection).Doc(row.CustomerID)
			batch.Update(ref, balanceUpdates(row.Balance, updatedAt))
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing balance batch: %w", err)
		}
		return nil
	}

	if err := runChunked(ctx, rows, store.BatchCeiling, apply, progress); err != nil {
		return fmt.Errorf("CommitBalances: %w", err)
	}
	return nil
}

// Interface checks.
var (
	_ store.CustomerRepository    = (*Repository)(nil)
	_ store.TransactionRepository = (*Repository)(nil)
	_ store.ReconWriter           = (*Repository)(nil)
	_ store.ReportRunRepository   = (*Repository)(nil)
)
