package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// Collection names in the console's Firestore project.
const (
	customersCollection    = "customers"
	transactionsCollection = "transactions"
	reportRunsCollection   = "reportRuns"
)

// Repository is the Firestore-backed implementation of the store
// repositories. It holds a shared client to avoid creating a new connection
// for each operation.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates a Repository with a shared Firestore client.
func NewRepository(ctx context.Context, projectID string) (*Repository, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating firestore client: %w", err)
	}
	return &Repository{client: client}, nil
}

// NewRepositoryWithClient wraps an existing client, used by tests against the
// emulator.
func NewRepositoryWithClient(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

// Close closes the underlying client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
