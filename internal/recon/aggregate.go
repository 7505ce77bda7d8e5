package recon

import (
	"math"
	"sort"

	"github.com/mellowdog/pawdesk/internal/domain"
)

// DefaultCutoffDate is the lower bound on startDate for the bulk
// recalculation. Ledger entries older than this predate the console and were
// settled on paper.
const DefaultCutoffDate = "2024-01-01"

// Billed computes the amount a transaction should have charged:
// (price + extraDogs*surcharge) * quantity, minus the discount. Percent
// discounts apply to the whole base amount, fixed discounts subtract as-is.
func Billed(t *domain.Transaction) float64 {
	unit := t.Price + float64(t.ExtraDogCount)*domain.ExtraDogSurcharge
	base := unit * t.Quantity

	var discount float64
	switch t.DiscountType {
	case domain.DiscountTypePercent:
		discount = base * (t.DiscountValue / 100)
	default:
		discount = t.DiscountValue
	}

	return base - discount
}

// Delta is a transaction's contribution to its customer's balance: positive
// when the customer overpaid (credit), negative when money is still owed.
func Delta(t *domain.Transaction) float64 {
	return t.PaidAmount - Billed(t)
}

// PreviewRow is one line of the bulk recalculation preview.
type PreviewRow struct {
	CustomerID string `json:"customer_id"`
	DogName    string `json:"dog_name"`
	OwnerName  string `json:"owner_name"`

	// Balance is the freshly computed value, PreviousBalance the cached one,
	// Change their difference.
	Balance         int64 `json:"balance"`
	PreviousBalance int64 `json:"previous_balance"`
	Change          int64 `json:"change"`
}

// Totals aggregates the preview: Receivable is the absolute sum of all
// negative balances, Credit the sum of all positive ones.
type Totals struct {
	Receivable int64 `json:"receivable"`
	Credit     int64 `json:"credit"`
}

// RecalcInput is the request value for a bulk recalculation. CutoffDate is a
// "YYYY-MM-DD" lower bound on startDate; empty means DefaultCutoffDate.
type RecalcInput struct {
	Customers    []*domain.Customer
	Transactions []*domain.Transaction
	CutoffDate   string
}

// RecalcResult is the preview produced by Recalculate. Nothing has been
// written when it is returned; committing is a separate explicit step.
type RecalcResult struct {
	Rows   []PreviewRow `json:"rows"`
	Totals Totals       `json:"totals"`

	// MatchedCount counts income transactions attributed to some customer,
	// UnmatchedCount those no rule could place. Unmatched entries are
	// excluded from every sum and surfaced as a metric, not an error.
	MatchedCount   int `json:"matched_count"`
	UnmatchedCount int `json:"unmatched_count"`
}

// Recalculate folds every income transaction since the cutoff into per-
// customer balances. Attribution uses the transaction's own customerId when
// present and falls back to the matcher cascade otherwise.
//
// Accumulation stays in floating point across a customer's transactions;
// rounding happens once per customer at the end. Customers whose recomputed
// balance rounds to exactly zero are considered settled and suppressed from
// the preview.
func Recalculate(in RecalcInput) RecalcResult {
	cutoff := in.CutoffDate
	if cutoff == "" {
		cutoff = DefaultCutoffDate
	}

	byID := make(map[string]*domain.Customer, len(in.Customers))
	for _, c := range in.Customers {
		byID[c.ID] = c
	}
	idx := buildCustomerIndex(in.Customers)

	sums := make(map[string]float64, len(in.Customers))
	var res RecalcResult

	for _, t := range in.Transactions {
		if !t.IsIncome() {
			continue
		}
		// startDate is ISO formatted, so a string compare is a date compare.
		if t.StartDate < cutoff {
			continue
		}

		c := byID[t.CustomerID]
		if c == nil {
			c, _ = idx.resolve(t)
		}
		if c == nil {
			res.UnmatchedCount++
			continue
		}

		res.MatchedCount++
		sums[c.ID] += Delta(t)
	}

	for _, c := range in.Customers {
		sum, ok := sums[c.ID]
		if !ok {
			continue
		}
		balance := int64(math.Round(sum))
		if balance == 0 {
			continue
		}

		res.Rows = append(res.Rows, PreviewRow{
			CustomerID:      c.ID,
			DogName:         c.DogName,
			OwnerName:       c.OwnerName,
			Balance:         balance,
			PreviousBalance: c.Balance,
			Change:          balance - c.Balance,
		})

		if balance < 0 {
			res.Totals.Receivable += -balance
		} else {
			res.Totals.Credit += balance
		}
	}

	// Largest receivables/credits first.
	sort.SliceStable(res.Rows, func(i, j int) bool {
		return abs64(res.Rows[i].Balance) > abs64(res.Rows[j].Balance)
	})

	return res
}

// RefreshBalance recomputes a single customer's balance from transactions
// already filtered to that customer's income entries. Unlike the bulk path
// there is no cutoff and no zero suppression: the freshly computed value is
// always the answer, zero included.
func RefreshBalance(transactions []*domain.Transaction) int64 {
	var sum float64
	for _, t := range transactions {
		if !t.IsIncome() {
			continue
		}
		sum += Delta(t)
	}
	return int64(math.Round(sum))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
