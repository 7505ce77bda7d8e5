package recon

import (
	"reflect"
	"testing"

	"github.com/mellowdog/pawdesk/internal/domain"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Coco  ", "Coco"},
		{"Kim   Minji", "Kim Minji"},
		{"\tLee\n Soo ", "Lee Soo"},
		{"", ""},
		{"   ", ""},
		{"coco", "coco"}, // no case folding
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"010-1234-5678", "01012345678"},
		{"+82 10 1234 5678", "821012345678"},
		{"(010) 1234.5678", "01012345678"},
		{"no digits", ""},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhoneLast4(t *testing.T) {
	if got := phoneLast4("010-1234-5678"); got != "5678" {
		t.Errorf("phoneLast4 = %q, want 5678", got)
	}
	if got := phoneLast4("123"); got != "" {
		t.Errorf("phoneLast4 on short number = %q, want empty", got)
	}
}

func testCustomers() []*domain.Customer {
	return []*domain.Customer{
		{ID: "c1", DogName: "Coco", OwnerName: "Kim Minji", Phone: "010-1234-5678", Breed: "Poodle"},
		{ID: "c2", DogName: "Bori", OwnerName: "Lee Soo", Phone: "010-9999-0001"},
		{ID: "c3", DogName: "Coco", OwnerName: "Park Jiho", Phone: "010-5555-4321"},
	}
}

func TestMatch_Cascade(t *testing.T) {
	customers := testCustomers()

	tests := []struct {
		name         string
		tx           *domain.Transaction
		wantCustomer string
		wantTier     MatchTier
	}{
		{
			name:         "dog name and phone last4",
			tx:           &domain.Transaction{ID: "t1", DogName: "Coco", Contact: "01000005678"},
			wantCustomer: "c1",
			wantTier:     TierDogPhone,
		},
		{
			name:         "phone mismatch falls through to owner name",
			tx:           &domain.Transaction{ID: "t2", DogName: "Coco", Contact: "01099991234", CustomerName: "Kim Minji"},
			wantCustomer: "c1",
			wantTier:     TierDogOwner,
		},
		{
			name:         "owner name with messy whitespace",
			tx:           &domain.Transaction{ID: "t3", DogName: " Bori ", CustomerName: "Lee   Soo"},
			wantCustomer: "c2",
			wantTier:     TierDogOwner,
		},
		{
			name:         "same dog name disambiguated by phone",
			tx:           &domain.Transaction{ID: "t4", DogName: "Coco", Contact: "010-5555-4321"},
			wantCustomer: "c3",
			wantTier:     TierDogPhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match(customers, []*domain.Transaction{tt.tx})
			if len(res.Pairs) != 1 {
				t.Fatalf("got %d pairs, want 1", len(res.Pairs))
			}
			pair := res.Pairs[0]
			if pair.Customer.ID != tt.wantCustomer {
				t.Errorf("matched customer %s, want %s", pair.Customer.ID, tt.wantCustomer)
			}
			if pair.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s", pair.Tier, tt.wantTier)
			}
		})
	}
}

func TestMatch_SkipsAndMisses(t *testing.T) {
	customers := testCustomers()
	txs := []*domain.Transaction{
		{ID: "t1", DogName: "   "},                                  // no dog name: skipped
		{ID: "t2", DogName: "Mongshil", CustomerName: "Nobody"},     // no rule hits: silent miss
		{ID: "t3", DogName: "Coco", CustomerID: "c9"},               // already linked: ignored
		{ID: "t4", DogName: "Coco", Contact: "5678"},                // matched
		{ID: "t5", DogName: "Coco"},                                 // dog name alone is not enough
	}

	res := Match(customers, txs)

	if res.SkippedNoDogName != 1 {
		t.Errorf("SkippedNoDogName = %d, want 1", res.SkippedNoDogName)
	}
	if res.UnmatchedCount != 2 {
		t.Errorf("UnmatchedCount = %d, want 2", res.UnmatchedCount)
	}
	if len(res.Pairs) != 1 || res.Pairs[0].Transaction.ID != "t4" {
		t.Fatalf("pairs = %+v, want exactly t4", res.Pairs)
	}
}

func TestMatch_FirstCustomerWinsOnCollision(t *testing.T) {
	// Two customers with identical dog name and phone last-4: a known
	// ambiguity in the cascade. The first one in input order wins.
	customers := []*domain.Customer{
		{ID: "c1", DogName: "Coco", OwnerName: "Kim Minji", Phone: "010-1111-5678"},
		{ID: "c2", DogName: "Coco", OwnerName: "Choi Dara", Phone: "010-2222-5678"},
	}
	tx := &domain.Transaction{ID: "t1", DogName: "Coco", Contact: "5678"}

	res := Match(customers, []*domain.Transaction{tx})
	if len(res.Pairs) != 1 || res.Pairs[0].Customer.ID != "c1" {
		t.Fatalf("expected first customer c1 to win, got %+v", res.Pairs)
	}
}

func TestMatch_Idempotent(t *testing.T) {
	customers := testCustomers()
	txs := []*domain.Transaction{
		{ID: "t1", DogName: "Coco", Contact: "5678"},
		{ID: "t2", DogName: "Bori", CustomerName: "Lee Soo"},
		{ID: "t3", DogName: "Unknown"},
	}

	first := Match(customers, txs)
	second := Match(customers, txs)

	if !reflect.DeepEqual(first, second) {
		t.Error("two scans over unchanged input produced different results")
	}
}

func TestMatch_ConvergesAfterCommit(t *testing.T) {
	customers := testCustomers()
	txs := []*domain.Transaction{
		{ID: "t1", DogName: "Coco", Contact: "5678"},
		{ID: "t2", DogName: "Bori", CustomerName: "Lee Soo"},
	}

	first := Match(customers, txs)
	if len(first.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(first.Pairs))
	}

	// Simulate committing the first pair: the transaction gains a customerId
	// and must drop out of the next scan.
	first.Pairs[0].Transaction.CustomerID = first.Pairs[0].Customer.ID

	second := Match(customers, txs)
	if len(second.Pairs) != 1 {
		t.Fatalf("after commit got %d pairs, want 1", len(second.Pairs))
	}
	if second.Pairs[0].Transaction.ID == first.Pairs[0].Transaction.ID {
		t.Error("committed transaction still appears in the scan")
	}
}
