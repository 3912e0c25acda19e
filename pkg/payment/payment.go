package payment

import (
	"time"
)

// Method is how a payment was made. Free-form labels are allowed besides the
// predefined constants.
type Method string

const (
	MethodCreditCard   Method = "credit_card"
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
	MethodAutoDebit    Method = "auto_debit"
	MethodOther        Method = "other"
)

// PaymentRecord describes whether and how the obligation of one item for one
// month was settled. Absence of a record means "unpaid, no history".
//
// Records created by a single prepayment transaction share a GroupID. The
// record at the month the payment was initiated is the origin: it carries the
// full MonthsPaid count. Every other member is a follow-on: MonthsPaid is 1
// and PrepaidFrom points back at the origin month.
type PaymentRecord struct {
	ItemID    string
	YearMonth YearMonth
	IsPaid    bool
	// PaidDate, when set, falls within YearMonth (enforced by the callers via
	// ValidatePaymentDate, not by the ledger itself).
	PaidDate    *time.Time
	Method      Method
	Memo        string
	MonthsPaid  int
	GroupID     string
	PrepaidFrom *YearMonth
}

// NewRecord returns the unpaid default record for a ledger cell.
func NewRecord(itemID string, ym YearMonth) PaymentRecord {
	return PaymentRecord{
		ItemID:     itemID,
		YearMonth:  ym,
		MonthsPaid: 1,
	}
}

func (r PaymentRecord) IsFollowOn() bool {
	return r.PrepaidFrom != nil
}

func (r PaymentRecord) IsOrigin() bool {
	return r.GroupID != "" && r.PrepaidFrom == nil
}

// EffectiveMonth is the month the money actually left the payer: the month of
// PaidDate when set, otherwise the obligation month itself.
func (r PaymentRecord) EffectiveMonth() YearMonth {
	if r.PaidDate != nil {
		return YearMonthOf(*r.PaidDate)
	}
	return r.YearMonth
}

// RecordPatch is a shallow merge over a PaymentRecord: nil fields are left
// untouched. PaidDate and PrepaidFrom are nullable, so clearing them is
// expressed with the explicit Clear flags.
type RecordPatch struct {
	IsPaid           *bool
	PaidDate         *time.Time
	ClearPaidDate    bool
	Method           *Method
	Memo             *string
	MonthsPaid       *int
	GroupID          *string
	PrepaidFrom      *YearMonth
	ClearPrepaidFrom bool
}

func (r *PaymentRecord) Apply(patch RecordPatch) {
	if patch.IsPaid != nil {
		r.IsPaid = *patch.IsPaid
	}
	if patch.ClearPaidDate {
		r.PaidDate = nil
	} else if patch.PaidDate != nil {
		d := *patch.PaidDate
		r.PaidDate = &d
	}
	if patch.Method != nil {
		r.Method = *patch.Method
	}
	if patch.Memo != nil {
		r.Memo = *patch.Memo
	}
	if patch.MonthsPaid != nil {
		r.MonthsPaid = *patch.MonthsPaid
	}
	if patch.GroupID != nil {
		r.GroupID = *patch.GroupID
	}
	if patch.ClearPrepaidFrom {
		r.PrepaidFrom = nil
	} else if patch.PrepaidFrom != nil {
		ym := *patch.PrepaidFrom
		r.PrepaidFrom = &ym
	}
}

// reset returns the record to the unpaid defaults while keeping the row. Group
// removal relies on this: rows are reset, never deleted, so a later re-check of
// the same cell does not resurrect stale history.
func (r *PaymentRecord) reset() {
	r.IsPaid = false
	r.PaidDate = nil
	r.Method = ""
	r.Memo = ""
	r.MonthsPaid = 1
	r.GroupID = ""
	r.PrepaidFrom = nil
}
