package recon

import (
	"github.com/mellowdog/pawdesk/internal/domain"
)

// MatchTier records which rule of the cascade produced a candidate pair, so
// the operator review screen can rank phone-backed matches above name-only
// ones instead of seeing a flat list.
type MatchTier string

const (
	// TierDogPhone is a dog-name plus phone-last-4 match.
	TierDogPhone MatchTier = "dog_phone"
	// TierDogOwner is a dog-name plus owner-name match.
	TierDogOwner MatchTier = "dog_owner"
)

// MatchPair is one proposed (transaction, customer) link, pending operator
// approval. Nothing is written until a commit is requested explicitly.
type MatchPair struct {
	Transaction *domain.Transaction
	Customer    *domain.Customer
	Tier        MatchTier
}

// MatchResult is the outcome of one scan over the unlinked transactions.
type MatchResult struct {
	Pairs []MatchPair

	// SkippedNoDogName counts transactions with no usable dog name; they can
	// never be matched and are left for manual cleanup.
	SkippedNoDogName int

	// UnmatchedCount counts transactions that had a dog name but matched no
	// customer under either rule.
	UnmatchedCount int
}

// customerIndex holds the lookup tables for the match cascade. The cascade is
// a heuristic with a known false-negative/false-positive trade-off: two
// customers sharing a dog name and the same phone last-4 would collide. When
// two customers produce the same key, the first one in input order wins,
// matching the original first-hit scan behavior.
type customerIndex struct {
	byDogPhone map[string]*domain.Customer // "dog|last4"
	byDogOwner map[string]*domain.Customer // "dog|owner"
}

func buildCustomerIndex(customers []*domain.Customer) *customerIndex {
	idx := &customerIndex{
		byDogPhone: make(map[string]*domain.Customer, len(customers)),
		byDogOwner: make(map[string]*domain.Customer, len(customers)),
	}

	for _, c := range customers {
		dog := NormalizeName(c.DogName)
		if dog == "" {
			continue
		}
		if last4 := phoneLast4(c.Phone); last4 != "" {
			key := dog + "|" + last4
			if _, ok := idx.byDogPhone[key]; !ok {
				idx.byDogPhone[key] = c
			}
		}
		if owner := NormalizeName(c.OwnerName); owner != "" {
			key := dog + "|" + owner
			if _, ok := idx.byDogOwner[key]; !ok {
				idx.byDogOwner[key] = c
			}
		}
	}

	return idx
}

// resolve runs the two-rule cascade for one transaction. First rule to
// succeed wins; there is no scoring.
func (idx *customerIndex) resolve(t *domain.Transaction) (*domain.Customer, MatchTier) {
	dog := NormalizeName(t.DogName)
	if dog == "" {
		return nil, ""
	}

	if last4 := phoneLast4(t.Contact); last4 != "" {
		if c, ok := idx.byDogPhone[dog+"|"+last4]; ok {
			return c, TierDogPhone
		}
	}

	if owner := NormalizeName(t.CustomerName); owner != "" {
		if c, ok := idx.byDogOwner[dog+"|"+owner]; ok {
			return c, TierDogOwner
		}
	}

	return nil, ""
}

// Match proposes customer links for every unlinked transaction. It is a pure
// function over the in-memory collections: running it twice over the same
// input yields the same pair list, and transactions that gained a customerId
// since the last scan simply drop out of the next one.
//
// A transaction with no matching customer is a silent miss, counted but not
// reported per-entry; recovery is manual.
func Match(customers []*domain.Customer, transactions []*domain.Transaction) MatchResult {
	idx := buildCustomerIndex(customers)

	var res MatchResult
	for _, t := range transactions {
		if t.CustomerID != "" {
			continue
		}
		if NormalizeName(t.DogName) == "" {
			res.SkippedNoDogName++
			continue
		}

		c, tier := idx.resolve(t)
		if c == nil {
			res.UnmatchedCount++
			continue
		}
		res.Pairs = append(res.Pairs, MatchPair{Transaction: t, Customer: c, Tier: tier})
	}

	return res
}
