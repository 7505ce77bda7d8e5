package domain

// Transaction type sentinel values. Only income entries count toward a
// customer's balance; expense entries belong to the bookkeeping side of the
// console and never reach the reconciliation core.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Discount types carried on a transaction.
const (
	DiscountTypeAmount  = "amount"
	DiscountTypePercent = "percent"
)

// ExtraDogSurcharge is the per-visit surcharge for each additional dog,
// in Korean won.
const ExtraDogSurcharge = 10000

// Transaction is one ledger line in the transactions collection. Entries are
// created by the intake workflow and are immutable in spirit: reconciliation
// only ever backfills CustomerID and the denormalized name/contact/breed
// fields, never the financial fields.
type Transaction struct {
	ID   string `firestore:"-"`
	Type string `firestore:"type"`

	// CustomerID is empty for unlinked entries; the matcher backfills it.
	CustomerID   string `firestore:"customerId,omitempty"`
	DogName      string `firestore:"dogName,omitempty"`
	CustomerName string `firestore:"customerName,omitempty"`
	Contact      string `firestore:"contact,omitempty"`
	Breed        string `firestore:"breed,omitempty"`

	Price         float64 `firestore:"price"`
	Quantity      float64 `firestore:"quantity"`
	ExtraDogCount int     `firestore:"extraDogCount,omitempty"`
	DiscountType  string  `firestore:"discountType,omitempty"`
	DiscountValue float64 `firestore:"discountValue,omitempty"`
	PaidAmount    float64 `firestore:"paidAmount"`

	// StartDate is the service date as "YYYY-MM-DD".
	StartDate string `firestore:"startDate,omitempty"`
}

// IsIncome reports whether the entry counts toward a customer balance.
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}
