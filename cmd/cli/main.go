package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ovolkov/billflow/internal/calendar"
	"github.com/ovolkov/billflow/internal/config"
	"github.com/ovolkov/billflow/internal/domain"
	fsstore "github.com/ovolkov/billflow/internal/infra/firestore"
	"github.com/ovolkov/billflow/internal/logger"
	"github.com/ovolkov/billflow/internal/reconcile"
	"github.com/ovolkov/billflow/internal/splits"
)

func main() {
	log := logger.WithComponent(logger.New(), "cli")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "periods":
		runPeriods(log)
	case "reconcile":
		runReconcile(log)
	case "status":
		runStatus(log)
	case "summary":
		runSummary(log)
	case "rebalance":
		runRebalance(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Billflow CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  periods    Print the calendar periods of a year")
	fmt.Println("  reconcile  Rematch one obligation against its periods")
	fmt.Println("  status     Show the current status of an obligation period")
	fmt.Println("  summary    Rebuild and print a source period summary")
	fmt.Println("  rebalance  Redistribute a transaction's splits to its amount")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// openReconciler builds a reconciler over the configured Firestore backend.
// CLI commands operate on shared state, so the in-memory backend is refused.
func openReconciler(ctx context.Context, log zerolog.Logger) (*reconcile.Reconciler, *fsstore.Store) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.Store.Backend != "firestore" {
		log.Fatal().Str("backend", cfg.Store.Backend).Msg("CLI requires the firestore backend")
	}

	st, err := fsstore.NewStore(ctx, cfg.Store.ProjectID, cfg.Store.DatabaseID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}

	r := reconcile.New(st, st, st, st).
		WithThresholds(reconcile.Thresholds{
			ExtraPrincipalRatio: cfg.Classifier.ExtraPrincipalRatio,
			AdvanceDays:         cfg.Classifier.AdvanceDays,
		}, cfg.Status.DueSoonDays)
	return r, st
}

func runPeriods(log zerolog.Logger) {
	fs := flag.NewFlagSet("periods", flag.ExitOnError)
	periodType := fs.String("type", "MONTHLY", "Period type: WEEKLY, MONTHLY or BI_MONTHLY")
	year := fs.Int("year", time.Now().UTC().Year(), "Calendar year")
	fs.Parse(os.Args[2:])

	periods, err := calendar.Year(domain.PeriodType(*periodType), *year)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate periods")
	}

	for _, p := range periods {
		fmt.Printf("%-22s %s .. %s (%d days)\n", p.ID, p.Start, p.End, p.Days())
	}
}

func runReconcile(log zerolog.Logger) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	ownerID := fs.String("owner", "", "Owner ID")
	obligationID := fs.String("obligation", "", "Obligation ID to rematch")
	fs.Parse(os.Args[2:])

	if *ownerID == "" || *obligationID == "" {
		log.Fatal().Msg("Error: --owner and --obligation are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	r, st := openReconciler(ctx, log)
	defer st.Close()

	res, err := r.ReconcileObligation(ctx, *ownerID, *obligationID)
	if err != nil {
		log.Fatal().Err(err).Msg("Reconcile failed")
	}

	fmt.Printf("Reconciled %s: %d periods updated, %d occurrences matched\n",
		res.ObligationID, res.PeriodsUpdated, res.OccurrencesMatched)
	for _, e := range res.Errors {
		fmt.Printf("  skipped %s\n", e.Error())
	}
}

func runStatus(log zerolog.Logger) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	ownerID := fs.String("owner", "", "Owner ID")
	periodID := fs.String("period", "", "Obligation period ID")
	fs.Parse(os.Args[2:])

	if *ownerID == "" || *periodID == "" {
		log.Fatal().Msg("Error: --owner and --period are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	r, st := openReconciler(ctx, log)
	defer st.Close()

	status, err := r.StatusOf(ctx, *ownerID, *periodID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to derive status")
	}

	p, err := st.GetObligationPeriod(ctx, *ownerID, *periodID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load period")
	}

	fmt.Printf("%s [%s]\n", p.ID, status)
	fmt.Printf("  due %.2f, paid %.2f, unpaid %.2f\n", p.TotalAmountDue, p.TotalAmountPaid, p.TotalAmountUnpaid)
	fmt.Printf("  occurrences %d (%d paid, %d unpaid)\n", p.OccurrencesInPeriod, p.OccurrencesPaid, p.OccurrencesUnpaid)
	for _, o := range p.Occurrences {
		mark := " "
		if o.Paid {
			mark = "x"
		}
		fmt.Printf("  [%s] due %s expected %.2f", mark, o.DueDate, o.ExpectedAmount)
		if o.Paid {
			fmt.Printf(" paid %.2f on %s (%s)", o.ActualAmount, o.PaidDate, o.Payment)
		}
		fmt.Println()
	}
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	ownerID := fs.String("owner", "", "Owner ID")
	sourcePeriodID := fs.String("period", "", "Source period ID, e.g. MONTHLY-2026-01")
	fs.Parse(os.Args[2:])

	if *ownerID == "" || *sourcePeriodID == "" {
		log.Fatal().Msg("Error: --owner and --period are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	r, st := openReconciler(ctx, log)
	defer st.Close()

	s, err := r.RebuildSummary(ctx, *ownerID, *sourcePeriodID)
	if err != nil {
		log.Fatal().Err(err).Msg("Summary rebuild failed")
	}

	fmt.Printf("Summary %s (%s .. %s)\n", s.SourcePeriodID, s.Start, s.End)
	fmt.Printf("  bills:   %d due %.2f paid %.2f (%d%%)\n", s.Bills.Count, s.Bills.TotalDue, s.Bills.TotalPaid, s.Bills.ProgressPercentage)
	fmt.Printf("  income:  %d due %.2f paid %.2f (%d%%)\n", s.Income.Count, s.Income.TotalDue, s.Income.TotalPaid, s.Income.ProgressPercentage)
	fmt.Printf("  budgets: %d allocated %.2f spent %.2f (%d over)\n", s.Budgets.Count, s.Budgets.TotalAllocated, s.Budgets.TotalSpent, s.Budgets.OverBudgetCount)
	fmt.Printf("  income %.2f, expenses %.2f, net %.2f, savings rate %.1f%%\n", s.TotalIncome, s.TotalExpenses, s.NetCashFlow, s.SavingsRate*100)
}

func runRebalance(log zerolog.Logger) {
	fs := flag.NewFlagSet("rebalance", flag.ExitOnError)
	ownerID := fs.String("owner", "", "Owner ID")
	transactionID := fs.String("transaction", "", "Transaction ID to rebalance")
	fs.Parse(os.Args[2:])

	if *ownerID == "" || *transactionID == "" {
		log.Fatal().Msg("Error: --owner and --transaction are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	_, st := openReconciler(ctx, log)
	defer st.Close()

	txn, err := st.GetTransaction(ctx, *ownerID, *transactionID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transaction")
	}

	txn.Splits = splits.Redistribute(txn.Amount, txn.Splits)
	if err := st.UpdateTransactionSplits(ctx, *ownerID, *transactionID, txn.Splits); err != nil {
		log.Fatal().Err(err).Msg("Failed to update splits")
	}

	fmt.Printf("Rebalanced %s (amount %.2f) into %d splits totalling %.2f:\n",
		txn.ID, txn.Amount, len(txn.Splits), txn.SplitTotal())
	for _, sp := range txn.Splits {
		fmt.Printf("  %-36s %.2f\n", sp.ID, sp.Amount)
	}
}
