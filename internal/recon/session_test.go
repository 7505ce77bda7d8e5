package recon

import (
	"testing"

	"github.com/mellowdog/pawdesk/internal/domain"
)

func sessionInput(balance float64) RecalcInput {
	return RecalcInput{
		Customers: []*domain.Customer{{ID: "c1", DogName: "Coco", OwnerName: "Kim"}},
		Transactions: []*domain.Transaction{{
			ID: "t1", Type: domain.TransactionTypeIncome, CustomerID: "c1",
			StartDate: "2024-03-01", Quantity: 1, PaidAmount: balance,
		}},
	}
}

func TestSession_Workflow(t *testing.T) {
	s := NewSession()

	if s.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", s.State())
	}
	if s.Preview() != nil {
		t.Fatal("expected no preview before calculation")
	}
	if err := s.MarkCommitted(); err == nil {
		t.Fatal("expected error committing with no preview")
	}

	res := s.Calculate(sessionInput(10000))
	if s.State() != StateCalculated {
		t.Errorf("state after Calculate = %s, want calculated", s.State())
	}
	if len(res.Rows) != 1 || res.Rows[0].Balance != 10000 {
		t.Fatalf("unexpected preview: %+v", res.Rows)
	}

	if err := s.MarkCommitted(); err != nil {
		t.Fatalf("MarkCommitted: %v", err)
	}
	if s.State() != StateCommitted {
		t.Errorf("state after commit = %s, want committed", s.State())
	}
}

func TestSession_RecalculationDiscardsPreview(t *testing.T) {
	s := NewSession()

	first := s.Calculate(sessionInput(10000))
	second := s.Calculate(sessionInput(20000))

	if s.Preview() == first {
		t.Error("old preview still held after recalculation")
	}
	if got := s.Preview(); got != second || got.Rows[0].Balance != 20000 {
		t.Errorf("preview = %+v, want the second calculation", got)
	}

	// Committing twice without a fresh calculation is rejected.
	if err := s.MarkCommitted(); err != nil {
		t.Fatalf("MarkCommitted: %v", err)
	}
	if err := s.MarkCommitted(); err == nil {
		t.Error("expected error committing an already committed preview")
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	s.Calculate(sessionInput(10000))
	s.Reset()

	if s.State() != StateIdle {
		t.Errorf("state after Reset = %s, want idle", s.State())
	}
	if s.Preview() != nil {
		t.Error("preview survived Reset")
	}
}
