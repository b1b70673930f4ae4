package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"pfm/config"
	"pfm/models"
	"pfm/report"
	"pfm/store"
	"pfm/store/gormstore"
)

func main() {
	username := flag.String("username", "", "username to report for")
	month := flag.String("month", time.Now().Format("2006-01"), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list matching transactions")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "--username is required")
		os.Exit(2)
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: failed to load .env: %v", err)
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	st, err := gormstore.Open(dsn, false)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	if err := runReport(context.Background(), os.Stdout, st, *username, *month, *list); err != nil {
		log.Fatal(err)
	}
}

// runReport prints a month-bounded summary for username and optionally
// lists the matching transactions.
func runReport(ctx context.Context, w io.Writer, st store.Store, username, month string, list bool) error {
	user, err := st.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	r, err := report.MonthRange(month)
	if err != nil {
		return err
	}
	txs, err := st.ListTransactions(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}
	cats, err := st.ListCategories(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	totals := report.Summarize(txs, r)
	fmt.Fprintf(w, "Report for user=%s month=%s (UTC):\n", user.Username, month)
	fmt.Fprintf(w, "  records=%d expenses=%s revenues=%s balance=%s\n",
		totals.Count, totals.TotalExpenses.StringFixed(2), totals.TotalRevenues.StringFixed(2), totals.Balance.StringFixed(2))

	if list {
		for _, tx := range txs {
			if !r.Contains(report.EffectiveDate(tx)) {
				continue
			}
			name, ok := names[tx.CategoryID]
			if !ok {
				name = models.UnknownCategory
			}
			fmt.Fprintf(w, "%s|%s|%s|%s|%s\n", tx.ID, name, tx.Type, tx.Amount.String(),
				report.EffectiveDate(tx).Format("2006-01-02"))
		}
	}
	return nil
}
