package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/bootstrap"
	"github.com/dvloznov/banking-coach/internal/config"
	"github.com/dvloznov/banking-coach/internal/domain"
	infraBQ "github.com/dvloznov/banking-coach/internal/infra/bigquery"
	"github.com/dvloznov/banking-coach/internal/infra/memory"
	"github.com/dvloznov/banking-coach/internal/jobs"
	"github.com/dvloznov/banking-coach/internal/logger"
	"github.com/dvloznov/banking-coach/internal/pipeline"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "categorize":
		runCategorize(log)
	case "profile":
		runProfile(log)
	case "export":
		runExport(log)
	case "show-statement":
		runShowStatement(log)
	case "sync-goals":
		runSyncGoals(log)
	case "seed-bigquery":
		runSeedBigQuery(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Banking Coach CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  categorize      Show the category of a movement description")
	fmt.Println("  profile         Print the 360 profile of a client")
	fmt.Println("  export          Export an account statement to GCS")
	fmt.Println("  show-statement  Print a statement previously exported to GCS")
	fmt.Println("  sync-goals      Mirror a user's goals to Notion")
	fmt.Println("  seed-bigquery   Load the demo bank into the BigQuery core tables")
	fmt.Println("  help            Show this help message")
	fmt.Println("\nConfiguration is read from the same environment as the API.")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

// services loads the configuration and connects the backends.
func services(log zerolog.Logger) *bootstrap.Services {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	svc, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	return svc
}

func runCategorize(log zerolog.Logger) {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	description := fs.String("description", "", "Movement description")
	mcc := fs.String("mcc", "", "Merchant category code (optional)")
	fs.Parse(os.Args[2:])

	if *description == "" && *mcc == "" {
		log.Fatal().Msg("Error: -description or -mcc is required")
	}

	svc := services(log)
	defer svc.Close()

	category := svc.Resolver.Resolve(domain.Transaction{Description: *description, MCC: *mcc})
	fmt.Printf("%s (id %d)\n", category.Name, category.ID)
}

func runProfile(log zerolog.Logger) {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	dni := fs.String("dni", "", "Client DNI")
	fs.Parse(os.Args[2:])

	if *dni == "" {
		log.Fatal().Msg("Error: -dni is required")
	}

	svc := services(log)
	defer svc.Close()

	ctx := logger.WithContext(context.Background(), log)
	client, err := svc.Core.FindClient(ctx, *dni)
	if err != nil {
		log.Fatal().Err(err).Msg("Client lookup failed")
	}
	p, err := svc.Core.Profile360(ctx, client.Code)
	if err != nil {
		log.Fatal().Err(err).Msg("Profile failed")
	}

	fmt.Println("\n=== Client Profile ===")
	fmt.Printf("Client:    %s %s (%s)\n", client.FirstNames, client.LastNames, client.Code)
	fmt.Printf("Period:    %s to %s\n", p.Period.Start.Format(time.DateOnly), p.Period.End.Format(time.DateOnly))
	fmt.Printf("Income:    %s\n", p.Income.StringFixed(2))
	fmt.Printf("Expense:   %s\n", p.Expense.StringFixed(2))
	fmt.Printf("Balance:   %s\n", p.Balance.StringFixed(2))
	fmt.Printf("Liquidity: %s\n", p.Liquidity.StringFixed(2))
	fmt.Printf("Profile:   %s (level %d)\n", p.Profile.Name, p.Profile.Level)
	if p.TopCategory != nil {
		fmt.Printf("Top:       %s\n", p.TopCategory.Name)
	}

	fmt.Printf("\n=== Spending by category (%d) ===\n", len(p.CategoryTotals))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, ct := range p.CategoryTotals {
		fmt.Fprintf(w, "%s\t%s\t%d movements\n", ct.Name, ct.Total.StringFixed(2), ct.Count)
	}
	w.Flush()
	fmt.Println()
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	account := fs.String("account", "", "Account number")
	month := fs.String("month", "", "Statement month as YYYY-MM (defaults to the latest active month)")
	user := fs.String("user", "", "Client code owning the account")
	fs.Parse(os.Args[2:])

	if *account == "" || *user == "" {
		log.Fatal().Msg("Usage: cli export -account NUMBER -user CODE [-month YYYY-MM]")
	}

	svc := services(log)
	defer svc.Close()

	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), 5*time.Minute)
	defer cancel()

	job := &jobs.Job{
		JobID:  "cli-" + time.Now().UTC().Format("20060102T150405"),
		Type:   jobs.JobTypeExportStatement,
		UserID: *user,
		Params: map[string]string{pipeline.ParamAccountNumber: *account},
	}
	if *month != "" {
		job.Params[pipeline.ParamMonth] = *month
	}

	if err := pipeline.NewRouter(svc.JobDeps()).Dispatch(ctx, job); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Exported %s lines to %s\n", job.Result[pipeline.ResultLines], job.Result[pipeline.ResultURI])
}

func runShowStatement(log zerolog.Logger) {
	fs := flag.NewFlagSet("show-statement", flag.ExitOnError)
	uri := fs.String("uri", "", "gs:// URI of the exported statement")
	fs.Parse(os.Args[2:])

	if *uri == "" {
		log.Fatal().Msg("Error: -uri is required")
	}

	svc := services(log)
	defer svc.Close()
	if svc.Exporter == nil {
		log.Fatal().Msg("GCS_BUCKET must be set")
	}

	s, err := svc.Exporter.Fetch(context.Background(), *uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch statement")
	}

	fmt.Println("\n=== Statement ===")
	fmt.Printf("Account:   %s (%s)\n", s.AccountNumber, s.Currency)
	fmt.Printf("Client:    %s\n", s.ClientCode)
	fmt.Printf("Period:    %s to %s\n", s.Period.Start.Format(time.DateOnly), s.Period.End.Format(time.DateOnly))
	fmt.Printf("Generated: %s\n", s.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("Credits:   %s\n", s.Credits.StringFixed(2))
	fmt.Printf("Debits:    %s\n", s.Debits.StringFixed(2))
	fmt.Printf("Net:       %s\n", s.Net.StringFixed(2))

	fmt.Printf("\n=== Lines (%d) ===\n", len(s.Lines))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, l := range s.Lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Timestamp.Format(time.DateOnly), l.Description, l.Category, l.Amount.StringFixed(2))
	}
	w.Flush()
	fmt.Println()
}

func runSyncGoals(log zerolog.Logger) {
	fs := flag.NewFlagSet("sync-goals", flag.ExitOnError)
	user := fs.String("user", "", "User id (client code)")
	dryRun := fs.Bool("dry-run", false, "Show what would change without writing to Notion")
	fs.Parse(os.Args[2:])

	if *user == "" {
		log.Fatal().Msg("Error: -user is required")
	}

	svc := services(log)
	defer svc.Close()
	if svc.Goals == nil {
		log.Fatal().Msg("NOTION_TOKEN and NOTION_GOALS_DB must be set")
	}

	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), 5*time.Minute)
	defer cancel()

	res, err := svc.Goals.SyncGoals(ctx, *user, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	prefix := ""
	if *dryRun {
		prefix = "[dry run] "
	}
	fmt.Printf("%screated=%d updated=%d archived=%d failed=%d\n", prefix, res.Created, res.Updated, res.Archived, res.Failed)
}

func runSeedBigQuery(log zerolog.Logger) {
	fs := flag.NewFlagSet("seed-bigquery", flag.ExitOnError)
	project := fs.String("project", os.Getenv("BQ_PROJECT"), "GCP project ID (or set BQ_PROJECT env)")
	dataset := fs.String("dataset", infraBQ.DefaultDataset, "BigQuery dataset ID")
	fs.Parse(os.Args[2:])

	if *project == "" {
		log.Fatal().Msg("Error: -project is required")
	}

	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), 5*time.Minute)
	defer cancel()

	repo, err := infraBQ.NewCoreRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	dump := memory.NewSeeded(time.Now()).Dump()
	if err := repo.LoadSnapshot(ctx, infraBQ.Snapshot(dump)); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	fmt.Printf("Loaded %d clients, %d accounts, %d cards, %d movements and %d categories into %s.%s\n",
		len(dump.Clients), len(dump.Accounts), len(dump.Cards), len(dump.Movements), len(dump.Categories), *project, *dataset)
}
