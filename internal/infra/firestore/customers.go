package firestore

import (
	"context"
	"fmt"

	"google.golang.org/api/iterator"

	"github.com/mellowdog/pawdesk/internal/domain"
)

// ListCustomers retrieves the full customer set. The matcher and the bulk
// aggregator both index customers wholesale in memory, so there is no
// server-side filter here.
func (r *Repository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	iter := r.client.Collection(customersCollection).Documents(ctx)
	defer iter.Stop()

	var customers []*domain.Customer
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCustomers: reading customers: %w", err)
		}

		var c domain.Customer
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("ListCustomers: decoding customer %s: %w", doc.Ref.ID, err)
		}
		c.ID = doc.Ref.ID
		customers = append(customers, &c)
	}

	return customers, nil
}

// GetCustomer retrieves a single customer by id.
func (r *Repository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	doc, err := r.client.Collection(customersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetCustomer: reading customer %s: %w", id, err)
	}

	var c domain.Customer
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("GetCustomer: decoding customer %s: %w", id, err)
	}
	c.ID = doc.Ref.ID
	return &c, nil
}

// UpdateBalance overwrites one customer's cached balance. Used by the
// single-customer refresh path; the bulk path goes through CommitBalances.
func (r *Repository) UpdateBalance(ctx context.Context, id string, balance int64, updatedAt string) error {
	ref := r.client.Collection(customersCollection).Doc(id)
	_, err := ref.Update(ctx, balanceUpdates(balance, updatedAt))
	if err != nil {
		return fmt.Errorf("UpdateBalance: updating customer %s: %w", id, err)
	}
	return nil
}
