package domain

// Customer is one household/dog profile in the customers collection.
// Balance is a cached aggregate: it must always be reproducible by replaying
// the customer's income transactions, and is refreshed by the balance
// recalculation workflows.
type Customer struct {
	ID        string `firestore:"-"`
	DogName   string `firestore:"dogName"`
	OwnerName string `firestore:"ownerName"`
	Phone     string `firestore:"phone"`
	Breed     string `firestore:"breed,omitempty"`

	// Balance is signed: negative means the customer owes the business,
	// positive means credit/overpayment.
	Balance           int64  `firestore:"balance"`
	LastBalanceUpdate string `firestore:"lastBalanceUpdate,omitempty"`
}
