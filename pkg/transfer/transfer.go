package transfer

import (
	"time"

	"github.com/fixtrack/fixtrack/pkg/item"
	"github.com/fixtrack/fixtrack/pkg/payment"
)

// Snapshot is the complete exportable state: every item including inactive
// ones, and the full payment ledger.
type Snapshot struct {
	Items      []item.Item
	Payments   []payment.PaymentRecord
	ExportedAt time.Time
}

type ImportMode string

const (
	// ModeOverwrite replaces both stores wholesale.
	ModeOverwrite ImportMode = "overwrite"
	// ModeMerge appends entries whose identifying key is not present yet.
	// Existing entries are never overwritten.
	ModeMerge ImportMode = "merge"
)

func (m ImportMode) Valid() bool {
	return m == ModeOverwrite || m == ModeMerge
}

type ImportResult struct {
	ItemsImported    int
	ItemsSkipped     int
	PaymentsImported int
	PaymentsSkipped  int
}
