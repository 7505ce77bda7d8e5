// Package notionsync pushes the outstanding-balance preview into a Notion
// database the front desk works from. Notion is a mirror, never a source:
// sync is one-way and idempotent by the Customer ID property.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/mellowdog/pawdesk/internal/logger"
	"github.com/mellowdog/pawdesk/internal/recon"
)

const (
	// BatchSize defines the number of rows between progress log lines.
	BatchSize = 100
)

// SyncBalances syncs balance preview rows into the Notion database. Existing
// pages (matched by the Customer ID property) are updated in place, new
// customers get a fresh page. With dryRun set, nothing is written.
func SyncBalances(ctx context.Context, notionClient NotionService, notionDBID string, rows []recon.PreviewRow, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Int("rows", len(rows)).
		Bool("dry_run", dryRun).
		Msg("Starting balance sync to Notion")

	pages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("SyncBalances: querying existing pages: %w", err)
	}

	pageByCustomer := make(map[string]string, len(pages))
	for _, page := range pages {
		if customerID := extractCustomerID(page); customerID != "" {
			pageByCustomer[customerID] = string(page.ID)
		}
	}

	var created, updated int
	for i := range rows {
		row := &rows[i]
		props := BalanceRowToNotionProperties(row)

		if dryRun {
			continue
		}

		if pageID, ok := pageByCustomer[row.CustomerID]; ok {
			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				return fmt.Errorf("SyncBalances: updating page for customer %s: %w", row.CustomerID, err)
			}
			updated++
		} else {
			if _, err := notionClient.CreatePage(ctx, notionDBID, props); err != nil {
				return fmt.Errorf("SyncBalances: creating page for customer %s: %w", row.CustomerID, err)
			}
			created++
		}

		if (i+1)%BatchSize == 0 {
			log.Info().Int("processed", i+1).Int("total", len(rows)).Msg("Balance sync progress")
		}
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Msg("Balance sync to Notion complete")

	return nil
}

// queryAllNotionPages pages through the whole database.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}

// extractCustomerID pulls the Customer ID rich-text property off a page.
func extractCustomerID(page notionapi.Page) string {
	prop, ok := page.Properties["Customer ID"]
	if !ok {
		return ""
	}
	rich, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rich.RichText) == 0 {
		return ""
	}
	return rich.RichText[0].PlainText
}
