package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/mellowdog/pawdesk/internal/domain"
)

func decodeTransactions(iter *firestore.DocumentIterator, op string) ([]*domain.Transaction, error) {
	defer iter.Stop()

	var txs []*domain.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: reading transactions: %w", op, err)
		}

		var t domain.Transaction
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("%s: decoding transaction %s: %w", op, doc.Ref.ID, err)
		}
		t.ID = doc.Ref.ID
		txs = append(txs, &t)
	}

	return txs, nil
}

// ListUnlinkedIncomeTransactions retrieves income entries lacking a
// customerId. Firestore cannot query for an absent field, so the income set
// is read and filtered client-side, the same wholesale load the scan needs
// anyway.
func (r *Repository) ListUnlinkedIncomeTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	iter := r.client.Collection(transactionsCollection).
		Where("type", "==", domain.TransactionTypeIncome).
		Documents(ctx)

	all, err := decodeTransactions(iter, "ListUnlinkedIncomeTransactions")
	if err != nil {
		return nil, err
	}

	unlinked := all[:0]
	for _, t := range all {
		if t.CustomerID == "" {
			unlinked = append(unlinked, t)
		}
	}
	return unlinked, nil
}

// ListIncomeTransactionsSince retrieves income entries with a startDate at or
// after the "YYYY-MM-DD" cutoff.
func (r *Repository) ListIncomeTransactionsSince(ctx context.Context, cutoffDate string) ([]*domain.Transaction, error) {
	iter := r.client.Collection(transactionsCollection).
		Where("type", "==", domain.TransactionTypeIncome).
		Where("startDate", ">=", cutoffDate).
		Documents(ctx)

	return decodeTransactions(iter, "ListIncomeTransactionsSince")
}

// ListCustomerIncomeTransactions retrieves the income entries already linked
// to one customer, with no date restriction.
func (r *Repository) ListCustomerIncomeTransactions(ctx context.Context, customerID string) ([]*domain.Transaction, error) {
	iter := r.client.Collection(transactionsCollection).
		Where("type", "==", domain.TransactionTypeIncome).
		Where("customerId", "==", customerID).
		Documents(ctx)

	return decodeTransactions(iter, "ListCustomerIncomeTransactions")
}
