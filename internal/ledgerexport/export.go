package ledgerexport

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/mellowdog/pawdesk/internal/recon"
)

const (
	datasetID      = "pawdesk"
	snapshotsTable = "balance_snapshots"
	runsTable      = "recon_runs"
)

// Exporter writes reconciliation results to the analytics dataset. It holds a
// shared BigQuery client to avoid creating a new connection per operation.
type Exporter struct {
	client *bigquery.Client
}

// NewExporter creates an Exporter for the given GCP project.
func NewExporter(ctx context.Context, projectID string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: creating client: %w", err)
	}
	return &Exporter{client: client}, nil
}

// Close closes the BigQuery client connection.
func (e *Exporter) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// ExportSnapshot inserts one balance snapshot row per preview row under a
// fresh run id, which is returned for cross-referencing with the run record.
func (e *Exporter) ExportSnapshot(ctx context.Context, rows []recon.PreviewRow) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	runID := uuid.NewString()
	now := time.Now().UTC()
	today := civil.DateOf(now)

	out := make([]*BalanceSnapshotRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, &BalanceSnapshotRow{
			SnapshotID:      uuid.NewString(),
			RunID:           runID,
			CustomerID:      row.CustomerID,
			DogName:         row.DogName,
			OwnerName:       row.OwnerName,
			Balance:         row.Balance,
			PreviousBalance: row.PreviousBalance,
			Change:          row.Change,
			SnapshotDate:    today,
			CreatedTS:       now,
		})
	}

	inserter := e.client.Dataset(datasetID).Table(snapshotsTable).Inserter()
	if err := inserter.Put(ctx, out); err != nil {
		return "", fmt.Errorf("ExportSnapshot: inserting rows: %w", err)
	}

	return runID, nil
}

// RecordRun inserts one reconciliation run record.
func (e *Exporter) RecordRun(ctx context.Context, row *ReconRunRow) error {
	if row.RunID == "" {
		row.RunID = uuid.NewString()
	}
	if row.StartedTS.IsZero() {
		row.StartedTS = time.Now().UTC()
	}

	inserter := e.client.Dataset(datasetID).Table(runsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("RecordRun: inserting row: %w", err)
	}
	return nil
}

// QuerySnapshotsByDateRange retrieves balance snapshots within the date
// range, oldest first.
func (e *Exporter) QuerySnapshotsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*BalanceSnapshotRow, error) {
	q := e.client.Query(fmt.Sprintf(`
		SELECT
			snapshot_id,
			run_id,
			customer_id,
			dog_name,
			owner_name,
			balance,
			previous_balance,
			change,
			snapshot_date,
			created_ts
		FROM %s.%s
		WHERE snapshot_date >= @start_date
		  AND snapshot_date <= @end_date
		ORDER BY snapshot_date, created_ts
	`, datasetID, snapshotsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format("2006-01-02")},
		{Name: "end_date", Value: endDate.Format("2006-01-02")},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QuerySnapshotsByDateRange: query read: %w", err)
	}

	var rows []*BalanceSnapshotRow
	for {
		var r BalanceSnapshotRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QuerySnapshotsByDateRange: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
