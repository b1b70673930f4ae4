// Package report aggregates a user's transactions into income/expense totals.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pfm/models"
)

const dateLayout = "2006-01-02"

// Range is an inclusive span of calendar days in UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses start and end as YYYY-MM-DD.
func ParseRange(start, end string) (Range, error) {
	if start == "" || end == "" {
		return Range{}, fmt.Errorf("start_date and end_date are required")
	}
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start_date, expected YYYY-MM-DD")
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end_date, expected YYYY-MM-DD")
	}
	if e.Before(s) {
		return Range{}, fmt.Errorf("start_date must not be after end_date")
	}
	return Range{Start: s, End: e}, nil
}

// MonthRange covers every day of month (YYYY-MM).
func MonthRange(month string) (Range, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return Range{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 1, -1)}, nil
}

// Contains reports whether t falls on a day inside the range.
func (r Range) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.Start) && t.Before(r.End.AddDate(0, 0, 1))
}

// EffectiveDate is the client-supplied date when it parses, else the
// creation time.
func EffectiveDate(tx models.Transaction) time.Time {
	if tx.Date != nil {
		d := strings.TrimSpace(*tx.Date)
		if t, err := time.Parse(dateLayout, d); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t.UTC()
		}
	}
	return tx.CreatedAt.UTC()
}

type kind int

const (
	other kind = iota
	expense
	revenue
)

func classify(txType string) kind {
	switch strings.ToLower(strings.TrimSpace(txType)) {
	case "expense":
		return expense
	case "income", "revenue":
		return revenue
	default:
		return other
	}
}

// Totals is the overall summary for a range.
type Totals struct {
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalRevenues decimal.Decimal `json:"total_revenues"`
	Balance       decimal.Decimal `json:"balance"`
	Count         int             `json:"count"`
}

// CategoryTotals is the per-category breakdown.
type CategoryTotals struct {
	Expenses decimal.Decimal `json:"expenses"`
	Revenues decimal.Decimal `json:"revenues"`
}

// Summarize totals the transactions whose effective date is inside r.
// Types other than expense/income/revenue are counted but not summed.
func Summarize(txs []models.Transaction, r Range) Totals {
	var out Totals
	for _, tx := range txs {
		if !r.Contains(EffectiveDate(tx)) {
			continue
		}
		out.Count++
		switch classify(tx.Type) {
		case expense:
			out.TotalExpenses = out.TotalExpenses.Add(tx.Amount)
		case revenue:
			out.TotalRevenues = out.TotalRevenues.Add(tx.Amount)
		}
	}
	out.Balance = out.TotalRevenues.Sub(out.TotalExpenses)
	return out
}

// ByCategory groups totals by category name. names maps category id to
// name; ids missing from it are grouped under models.UnknownCategory.
func ByCategory(txs []models.Transaction, names map[string]string, r Range) map[string]CategoryTotals {
	out := make(map[string]CategoryTotals)
	for _, tx := range txs {
		if !r.Contains(EffectiveDate(tx)) {
			continue
		}
		k := classify(tx.Type)
		if k == other {
			continue
		}
		name, ok := names[tx.CategoryID]
		if !ok {
			name = models.UnknownCategory
		}
		ct := out[name]
		if k == expense {
			ct.Expenses = ct.Expenses.Add(tx.Amount)
		} else {
			ct.Revenues = ct.Revenues.Add(tx.Amount)
		}
		out[name] = ct
	}
	return out
}
