package recon

import (
	"testing"

	"github.com/mellowdog/pawdesk/internal/domain"
)

func TestBilled(t *testing.T) {
	tests := []struct {
		name string
		tx   domain.Transaction
		want float64
	}{
		{
			name: "plain visit",
			tx:   domain.Transaction{Price: 30000, Quantity: 1},
			want: 30000,
		},
		{
			name: "extra dog surcharge and percent discount",
			tx: domain.Transaction{
				Price: 50000, Quantity: 2, ExtraDogCount: 1,
				DiscountType: domain.DiscountTypePercent, DiscountValue: 10,
			},
			// unit 60000, base 120000, discount 12000
			want: 108000,
		},
		{
			name: "fixed amount discount subtracts exactly",
			tx: domain.Transaction{
				Price: 30000, Quantity: 3,
				DiscountType: domain.DiscountTypeAmount, DiscountValue: 5000,
			},
			want: 85000,
		},
		{
			name: "missing discount type treated as fixed amount",
			tx:   domain.Transaction{Price: 20000, Quantity: 1, DiscountValue: 2000},
			want: 18000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Billed(&tt.tx); got != tt.want {
				t.Errorf("Billed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelta_WorkedExample(t *testing.T) {
	tx := domain.Transaction{
		Price: 50000, Quantity: 2, ExtraDogCount: 1,
		DiscountType: domain.DiscountTypePercent, DiscountValue: 10,
		PaidAmount: 80000,
	}
	if got := Delta(&tx); got != -28000 {
		t.Errorf("Delta = %v, want -28000 (customer owes 28,000)", got)
	}
}

func incomeTx(id, customerID, date string, paid, billed float64) *domain.Transaction {
	return &domain.Transaction{
		ID: id, Type: domain.TransactionTypeIncome,
		CustomerID: customerID, StartDate: date,
		Price: billed, Quantity: 1, PaidAmount: paid,
	}
}

func TestRecalculate(t *testing.T) {
	customers := []*domain.Customer{
		{ID: "c1", DogName: "Coco", OwnerName: "Kim Minji", Phone: "010-1234-5678", Balance: -5000},
		{ID: "c2", DogName: "Bori", OwnerName: "Lee Soo", Phone: "010-9999-0001", Balance: 0},
		{ID: "c3", DogName: "Dubu", OwnerName: "Park Jiho", Phone: "010-5555-4321", Balance: 70000},
	}

	txs := []*domain.Transaction{
		// c1: owes 30000, then overpays 10000 -> -20000.
		incomeTx("t1", "c1", "2024-03-01", 0, 30000),
		incomeTx("t2", "c1", "2024-04-01", 40000, 30000),
		// c2: settles exactly -> suppressed from the preview.
		incomeTx("t3", "c2", "2024-02-01", 25000, 25000),
		// c3: credit of 50000, attributed via the matcher cascade.
		&domain.Transaction{
			ID: "t4", Type: domain.TransactionTypeIncome, StartDate: "2024-05-01",
			DogName: "Dubu", Contact: "4321", Price: 10000, Quantity: 1, PaidAmount: 60000,
		},
		// Before the cutoff: ignored.
		incomeTx("t5", "c1", "2023-12-31", 0, 99999),
		// Expense: ignored.
		{ID: "t6", Type: domain.TransactionTypeExpense, CustomerID: "c1", StartDate: "2024-06-01", Price: 5000, Quantity: 1},
		// No resolvable customer: counted as unmatched.
		&domain.Transaction{ID: "t7", Type: domain.TransactionTypeIncome, StartDate: "2024-06-01", DogName: "Ghost", Price: 1000, Quantity: 1},
	}

	res := Recalculate(RecalcInput{Customers: customers, Transactions: txs})

	if res.UnmatchedCount != 1 {
		t.Errorf("UnmatchedCount = %d, want 1", res.UnmatchedCount)
	}
	if res.MatchedCount != 4 {
		t.Errorf("MatchedCount = %d, want 4", res.MatchedCount)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (c2 settled and suppressed)", len(res.Rows))
	}

	// Sorted by descending |balance|: c3 (+50000) before c1 (-20000).
	if res.Rows[0].CustomerID != "c3" || res.Rows[0].Balance != 50000 {
		t.Errorf("row 0 = %+v, want c3 with balance 50000", res.Rows[0])
	}
	if res.Rows[1].CustomerID != "c1" || res.Rows[1].Balance != -20000 {
		t.Errorf("row 1 = %+v, want c1 with balance -20000", res.Rows[1])
	}
	if res.Rows[1].PreviousBalance != -5000 || res.Rows[1].Change != -15000 {
		t.Errorf("row 1 previous/change = %d/%d, want -5000/-15000",
			res.Rows[1].PreviousBalance, res.Rows[1].Change)
	}

	if res.Totals.Receivable != 20000 {
		t.Errorf("Totals.Receivable = %d, want 20000", res.Totals.Receivable)
	}
	if res.Totals.Credit != 50000 {
		t.Errorf("Totals.Credit = %d, want 50000", res.Totals.Credit)
	}
}

func TestRecalculate_ZeroBalanceSuppressed(t *testing.T) {
	// Previous cached balance is stale and non-zero, but the recomputed value
	// rounds to zero: the customer is settled and must not appear.
	customers := []*domain.Customer{
		{ID: "c1", DogName: "Coco", OwnerName: "Kim Minji", Balance: -12345},
	}
	txs := []*domain.Transaction{
		incomeTx("t1", "c1", "2024-03-01", 30000, 30000),
	}

	res := Recalculate(RecalcInput{Customers: customers, Transactions: txs})
	if len(res.Rows) != 0 {
		t.Fatalf("settled customer appeared in preview: %+v", res.Rows)
	}
}

func TestRecalculate_SingleRoundingAtEnd(t *testing.T) {
	// Three thirds of a percent discount accumulate in floating point and
	// round once at the end, not per transaction.
	customers := []*domain.Customer{{ID: "c1", DogName: "Coco", OwnerName: "Kim"}}
	mk := func(id string) *domain.Transaction {
		return &domain.Transaction{
			ID: id, Type: domain.TransactionTypeIncome, CustomerID: "c1",
			StartDate: "2024-03-01", Price: 1000, Quantity: 1,
			DiscountType: domain.DiscountTypePercent, DiscountValue: 100.0 / 30.0,
			PaidAmount: 1000,
		}
	}
	txs := []*domain.Transaction{mk("t1"), mk("t2"), mk("t3")}

	res := Recalculate(RecalcInput{Customers: customers, Transactions: txs})
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	// Each delta is 1000*(1/30)*10 = 33.33...; the sum 99.99... rounds to 100.
	if res.Rows[0].Balance != 100 {
		t.Errorf("Balance = %d, want 100 (single rounding at the end)", res.Rows[0].Balance)
	}
}

func TestRecalculate_CustomCutoff(t *testing.T) {
	customers := []*domain.Customer{{ID: "c1", DogName: "Coco", OwnerName: "Kim"}}
	txs := []*domain.Transaction{
		incomeTx("t1", "c1", "2025-01-15", 0, 10000),
		incomeTx("t2", "c1", "2024-06-01", 0, 99999),
	}

	res := Recalculate(RecalcInput{Customers: customers, Transactions: txs, CutoffDate: "2025-01-01"})
	if len(res.Rows) != 1 || res.Rows[0].Balance != -10000 {
		t.Fatalf("rows = %+v, want single row with balance -10000", res.Rows)
	}
}

func TestRefreshBalance(t *testing.T) {
	txs := []*domain.Transaction{
		incomeTx("t1", "c1", "2023-01-01", 0, 30000), // no cutoff on the single path
		incomeTx("t2", "c1", "2024-01-01", 35000, 30000),
		{ID: "t3", Type: domain.TransactionTypeExpense, CustomerID: "c1", Price: 9999, Quantity: 1},
	}

	if got := RefreshBalance(txs); got != -25000 {
		t.Errorf("RefreshBalance = %d, want -25000", got)
	}

	// A settled customer gets an explicit zero, not a suppressed row.
	if got := RefreshBalance([]*domain.Transaction{incomeTx("t1", "c1", "2024-01-01", 10000, 10000)}); got != 0 {
		t.Errorf("RefreshBalance settled = %d, want 0", got)
	}
}
