package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"

	"github.com/mellowdog/pawdesk/internal/domain"
	infraFS "github.com/mellowdog/pawdesk/internal/infra/firestore"
	"github.com/mellowdog/pawdesk/internal/ledgerexport"
	"github.com/mellowdog/pawdesk/internal/logger"
	"github.com/mellowdog/pawdesk/internal/media"
	"github.com/mellowdog/pawdesk/internal/notionsync"
	"github.com/mellowdog/pawdesk/internal/reconcile"
	"github.com/mellowdog/pawdesk/internal/report"
)

func main() {
	log := logger.New("cli")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "scan":
		runScan(log)
	case "link":
		runLink(log)
	case "recalc":
		runRecalc(log)
	case "refresh":
		runRefresh(log)
	case "export":
		runExport(log)
	case "notion":
		runNotion(log)
	case "report":
		runReport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("PawDesk CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  scan      Propose customer links for unlinked income entries")
	fmt.Println("  link      Scan and commit all proposed customer links")
	fmt.Println("  recalc    Recompute customer balances and print the preview")
	fmt.Println("  refresh   Recompute and write one customer's balance")
	fmt.Println("  export    Export the balance preview to BigQuery")
	fmt.Println("  notion    Sync the balance preview to a Notion database")
	fmt.Println("  report    Draft a daily report for one visit")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// newService opens the document store and wires the reconciliation service.
// The caller must Close the returned repository.
func newService(ctx context.Context, log zerolog.Logger, project string) (*reconcile.Service, *infraFS.Repository) {
	if project == "" {
		project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if project == "" {
		log.Fatal().Msg("Error: --project or GOOGLE_CLOUD_PROJECT is required")
	}

	repo, err := infraFS.NewRepository(ctx, project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store repository")
	}
	return reconcile.NewService(repo, repo, repo), repo
}

func runScan(log zerolog.Logger) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	project := fs.String("project", "", "GCP project ID")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, repo := newService(ctx, log, *project)
	defer repo.Close()

	res, err := svc.Scan(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}

	for _, p := range res.Pairs {
		fmt.Printf("  %s -> %s (%s, %s)\n", p.Transaction.ID, p.Customer.ID, p.Customer.DogName, p.Tier)
	}
	fmt.Printf("%d candidates, %d skipped (no dog name), %d unmatched\n",
		len(res.Pairs), res.SkippedNoDogName, res.UnmatchedCount)
}

func runLink(log zerolog.Logger) {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	project := fs.String("project", "", "GCP project ID")
	dryRun := fs.Bool("dry-run", false, "Print candidates without writing")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, repo := newService(ctx, log, *project)
	defer repo.Close()

	res, err := svc.Scan(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}

	if *dryRun {
		for _, p := range res.Pairs {
			fmt.Printf("  %s -> %s (%s, %s)\n", p.Transaction.ID, p.Customer.ID, p.Customer.DogName, p.Tier)
		}
		fmt.Printf("Dry run: %d candidates, nothing written\n", len(res.Pairs))
		return
	}

	if err := svc.CommitPairs(ctx, res.Pairs, reconcile.LogProgress(log)); err != nil {
		log.Fatal().Err(err).Msg("Commit failed")
	}
	fmt.Printf("Linked %d transactions.\n", len(res.Pairs))
}

func runRecalc(log zerolog.Logger) {
	fs := flag.NewFlagSet("recalc", flag.ExitOnError)
	project := fs.String("project", "", "GCP project ID")
	cutoff := fs.String("cutoff", "", "Cutoff date YYYY-MM-DD (defaults to the standard historical cutoff)")
	commit := fs.Bool("commit", false, "Write the preview after calculating")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, repo := newService(ctx, log, *project)
	defer repo.Close()

	res, err := svc.Calculate(ctx, *cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("Recalculation failed")
	}

	for _, row := range res.Rows {
		fmt.Printf("  %-20s %10d -> %10d (%+d)\n", row.DogName, row.PreviousBalance, row.Balance, row.Change)
	}
	fmt.Printf("%d rows, receivable %d, credit %d\n", len(res.Rows), res.Totals.Receivable, res.Totals.Credit)

	if !*commit {
		return
	}
	if err := svc.CommitBalances(ctx, reconcile.LogProgress(log)); err != nil {
		log.Fatal().Err(err).Msg("Commit failed")
	}
	fmt.Println("Balances committed.")
}

func runRefresh(log zerolog.Logger) {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	project := fs.String("project", "", "GCP project ID")
	customerID := fs.String("customer-id", "", "Customer ID to refresh")
	fs.Parse(os.Args[2:])

	if *customerID == "" {
		log.Fatal().Msg("Error: --customer-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, repo := newService(ctx, log, *project)
	defer repo.Close()

	balance, err := svc.RefreshCustomer(ctx, *customerID)
	if err != nil {
		log.Fatal().Err(err).Msg("Refresh failed")
	}
	fmt.Printf("Customer %s balance: %d\n", *customerID, balance)
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	project := fs.String("project", "", "GCP project ID")
	cutoff := fs.String("cutoff", "", "Cutoff date YYYY-MM-DD")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	if *project == "" {
		*project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	svc, repo := newService(ctx, log, *project)
	defer repo.Close()

	startedTS := time.Now().UTC()
	res, err := svc.Calculate(ctx, *cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("Recalculation failed")
	}

	exporter, err := ledgerexport.NewExporter(ctx, *project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}
	defer exporter.Close()

	runID, err := exporter.ExportSnapshot(ctx, res.Rows)
	if err != nil {
		log.Fatal().Err(err).Msg("Snapshot export failed")
	}

	runRow := &ledgerexport.ReconRunRow{
		RunID:           runID,
		RunKind:         ledgerexport.RunKindBalanceRecalc,
		StartedTS:       startedTS,
		FinishedTS:      bigquery.NullTimestamp{Timestamp: time.Now().UTC(), Valid: true},
		MatchedCount:    int64(res.MatchedCount),
		UnmatchedCount:  int64(res.UnmatchedCount),
		CommittedCount:  int64(len(res.Rows)),
		TotalReceivable: res.Totals.Receivable,
		TotalCredit:     res.Totals.Credit,
		Status:          "SUCCESS",
	}
	if err := exporter.RecordRun(ctx, runRow); err != nil {
		log.Fatal().Err(err).Msg("Run record failed")
	}

	fmt.Printf("Exported %d rows as run %s\n", len(res.Rows), runID)
}

func runNotion(log zerolog.Logger) {
	fs := flag.NewFlagSet("notion", flag.ExitOnError)
	project := fs.String("project", "", "GCP project ID")
	cutoff := fs.String("cutoff", "", "Cutoff date YYYY-MM-DD")
	token := fs.String("token", os.Getenv("NOTION_TOKEN"), "Notion integration token (or set NOTION_TOKEN env)")
	dbID := fs.String("db", os.Getenv("NOTION_BALANCES_DB"), "Notion database ID (or set NOTION_BALANCES_DB env)")
	dryRun := fs.Bool("dry-run", false, "Log planned changes without writing")
	fs.Parse(os.Args[2:])

	if *token == "" || *dbID == "" {
		log.Fatal().Msg("Error: --token and --db are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, repo := newService(ctx, log, *project)
	defer repo.Close()

	res, err := svc.Calculate(ctx, *cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("Recalculation failed")
	}

	client := notionsync.NewNotionClient(*token)
	if err := notionsync.SyncBalances(ctx, client, *dbID, res.Rows, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}
	fmt.Printf("Synced %d rows to Notion.\n", len(res.Rows))
}

func runReport(log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	project := fs.String("project", "", "GCP project ID")
	customerID := fs.String("customer-id", "", "Customer the visit belongs to")
	dogName := fs.String("dog", "", "Dog name for the report")
	visitDate := fs.String("date", time.Now().Format("2006-01-02"), "Visit date YYYY-MM-DD")
	notes := fs.String("notes", "", "Staff handover notes")
	photos := fs.String("photos", "", "Comma-separated gs:// photo URIs")
	model := fs.String("model", report.DefaultModelName, "Gemini model")
	fs.Parse(os.Args[2:])

	if *customerID == "" || *notes == "" {
		log.Fatal().Msg("Error: --customer-id and --notes are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	_, repo := newService(ctx, log, *project)
	defer repo.Close()

	var photoURIs []string
	if *photos != "" {
		photoURIs = strings.Split(*photos, ",")
	}

	pipeline := report.NewPipeline(repo, report.NewGeminiDrafter(*model), media.NewService())
	run := &domain.ReportRun{
		CustomerID: *customerID,
		DogName:    *dogName,
		VisitDate:  *visitDate,
		Notes:      *notes,
		PhotoURIs:  photoURIs,
	}

	runID, err := pipeline.Generate(ctx, run)
	if err != nil {
		log.Fatal().Err(err).Str("run_id", runID).Msg("Report drafting failed")
	}
	fmt.Printf("Report drafted: run %s\n", runID)
}
