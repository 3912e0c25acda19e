package item

import (
	"strings"
	"time"
)

// Item is a recurring fixed-expense definition. Deactivation is a soft delete:
// the payment ledger keeps every record for an inactive item.
type Item struct {
	ID string
	// Name is unique among active items, compared case- and whitespace-insensitively.
	Name string
	// Amount is the monthly obligation in whole currency units; nil when not set.
	Amount    *int
	Note      string
	Active    bool
	CreatedAt time.Time
}

// NormalizeName produces the comparison key used for duplicate detection.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
