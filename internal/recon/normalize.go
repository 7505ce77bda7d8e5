package recon

import "strings"

// NormalizeName trims a name-like string and collapses internal whitespace to
// single spaces. Case is preserved: the intake forms and the customer cards
// are filled in by the same staff, so casing is already consistent and folding
// it would only widen the false-positive surface.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePhone strips everything but digits from a loosely formatted phone
// number ("010-1234-5678", "010 1234 5678", ...).
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// phoneLast4 returns the last four digits of a phone number, or "" when the
// number has fewer than four digits.
func phoneLast4(s string) string {
	digits := NormalizePhone(s)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
