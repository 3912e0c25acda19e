package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidMonthsPaid = errors.New("months paid must be at least 1")
	ErrDateOutOfRange    = errors.New("payment date is outside the month")
	ErrRecordNotFound    = errors.New("payment record not found")
)

// ValidatePaymentDate checks that date falls within ym. A nil date is always
// valid: a record may be paid without a date and defaults to the month itself
// for aggregation.
func ValidatePaymentDate(date *time.Time, ym YearMonth) error {
	if date == nil {
		return nil
	}
	if !ym.ContainsDate(*date) {
		return fmt.Errorf("%w: must be between %s and %s",
			ErrDateOutOfRange,
			ym.FirstDay().Format(paidDateLayout),
			ym.LastDay().Format(paidDateLayout),
		)
	}
	return nil
}

// Detail is the full payment form for one ledger cell. MonthsPaid > 1 turns
// the save into a prepayment covering the following months.
type Detail struct {
	IsPaid     bool
	PaidDate   *time.Time
	MonthsPaid int
	Method     Method
	Memo       string
}

type Service interface {
	GetRecord(ctx context.Context, itemID string, ym YearMonth) (*PaymentRecord, error)
	UpsertRecord(ctx context.Context, itemID string, ym YearMonth, patch RecordPatch) (PaymentRecord, error)
	DeleteRecord(ctx context.Context, itemID string, ym YearMonth) (bool, error)
	ApplyGroup(ctx context.Context, itemID string, origin YearMonth, monthsPaid int, paidDate *time.Time, method Method, memo string, groupID string) ([]PaymentRecord, error)
	RemoveGroup(ctx context.Context, groupID string) ([]PaymentRecord, error)
	FindGroup(ctx context.Context, itemID string, ym YearMonth) ([]PaymentRecord, error)
	SetPaid(ctx context.Context, itemID string, ym YearMonth, paid bool) error
	SaveDetail(ctx context.Context, itemID string, ym YearMonth, detail Detail) ([]PaymentRecord, error)
	DeletePayment(ctx context.Context, itemID string, ym YearMonth) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetRecord(ctx context.Context, itemID string, ym YearMonth) (*PaymentRecord, error) {
	return s.repo.Find(ctx, itemID, ym)
}

// UpsertRecord creates the cell's record with unpaid defaults when absent and
// shallow-merges the patch over it. The ledger performs no validation beyond
// the key: date-range checks are the caller's responsibility.
func (s *ServiceImpl) UpsertRecord(ctx context.Context, itemID string, ym YearMonth, patch RecordPatch) (PaymentRecord, error) {
	var result PaymentRecord
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		existing, err := repo.Find(ctx, itemID, ym)
		if err != nil {
			return err
		}
		rec := NewRecord(itemID, ym)
		if existing != nil {
			rec = *existing
		}
		rec.Apply(patch)
		if err := repo.Upsert(ctx, rec); err != nil {
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		return PaymentRecord{}, err
	}
	return result, nil
}

// DeleteRecord splices the row out entirely. Only meant for a single,
// non-grouped record; grouped cells go through RemoveGroup instead.
func (s *ServiceImpl) DeleteRecord(ctx context.Context, itemID string, ym YearMonth) (bool, error) {
	return s.repo.Delete(ctx, itemID, ym)
}

// ApplyGroup records "paid for this month and the next monthsPaid-1 months in
// one transaction" as a linked set of ledger rows. If the origin cell already
// belongs to a different group, that group is reset first, in the same
// transaction, so no follow-on is left pointing at an overwritten origin.
//
// monthsPaid == 1 degenerates to a single paid record carrying a fresh group
// id, so that every paid cell has a removable group.
func (s *ServiceImpl) ApplyGroup(
	ctx context.Context,
	itemID string,
	origin YearMonth,
	monthsPaid int,
	paidDate *time.Time,
	method Method,
	memo string,
	groupID string,
) ([]PaymentRecord, error) {
	if monthsPaid < 1 {
		return nil, ErrInvalidMonthsPaid
	}
	if err := ValidatePaymentDate(paidDate, origin); err != nil {
		return nil, err
	}
	if groupID == "" {
		groupID = uuid.NewString()
	}

	var records []PaymentRecord
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		existing, err := repo.Find(ctx, itemID, origin)
		if err != nil {
			return err
		}
		if existing != nil && existing.GroupID != "" && existing.GroupID != groupID {
			if _, err := resetGroup(ctx, repo, existing.GroupID); err != nil {
				return err
			}
		}

		for k := 0; k < monthsPaid; k++ {
			target := origin.AddMonths(k)
			found, err := repo.Find(ctx, itemID, target)
			if err != nil {
				return err
			}
			rec := NewRecord(itemID, target)
			if found != nil {
				rec = *found
			}

			rec.IsPaid = true
			rec.PaidDate = copyDate(paidDate)
			rec.Method = method
			rec.Memo = memo
			rec.GroupID = groupID
			if k == 0 {
				rec.MonthsPaid = monthsPaid
				rec.PrepaidFrom = nil
			} else {
				rec.MonthsPaid = 1
				from := origin
				rec.PrepaidFrom = &from
			}

			if err := repo.Upsert(ctx, rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("applied payment group %s for item %s: %s + %d months", groupID, itemID, origin, monthsPaid-1)
	return records, nil
}

// RemoveGroup resets every member of the group to unpaid defaults. Rows are
// reset, not deleted: other paths expect row presence and must not see stale
// history reappear. Returns the reset records; empty when the id matches
// nothing.
func (s *ServiceImpl) RemoveGroup(ctx context.Context, groupID string) ([]PaymentRecord, error) {
	var removed []PaymentRecord
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		removed, err = resetGroup(ctx, repo, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// FindGroup resolves the record at the cell and returns all records sharing
// its group id. Nil when the cell has no record or the record is ungrouped.
func (s *ServiceImpl) FindGroup(ctx context.Context, itemID string, ym YearMonth) ([]PaymentRecord, error) {
	rec, err := s.repo.Find(ctx, itemID, ym)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.GroupID == "" {
		return nil, nil
	}
	return s.repo.FindByGroup(ctx, rec.GroupID)
}

// SetPaid is the quick-toggle path of the month-cell checkbox: checking marks
// the cell paid with no date (the cell's own month counts for aggregation);
// unchecking removes the cell's group, or resets the lone record.
func (s *ServiceImpl) SetPaid(ctx context.Context, itemID string, ym YearMonth, paid bool) error {
	if paid {
		isPaid := true
		method := MethodCreditCard
		monthsPaid := 1
		groupID := uuid.NewString()
		_, err := s.UpsertRecord(ctx, itemID, ym, RecordPatch{
			IsPaid:        &isPaid,
			ClearPaidDate: true,
			Method:        &method,
			MonthsPaid:    &monthsPaid,
			GroupID:       &groupID,
		})
		return err
	}

	existing, err := s.repo.Find(ctx, itemID, ym)
	if err != nil {
		return err
	}
	if existing != nil && existing.GroupID != "" {
		_, err := s.RemoveGroup(ctx, existing.GroupID)
		return err
	}
	_, err = s.UpsertRecord(ctx, itemID, ym, resetPatch())
	return err
}

// SaveDetail is the payment-form path. Marking unpaid removes the cell's group
// (or resets the lone record). Marking paid defaults the date to the month's
// first day and re-applies the cell's group: a singleton for monthsPaid == 1,
// a prepayment otherwise.
func (s *ServiceImpl) SaveDetail(ctx context.Context, itemID string, ym YearMonth, detail Detail) ([]PaymentRecord, error) {
	if detail.MonthsPaid < 1 {
		return nil, ErrInvalidMonthsPaid
	}

	if !detail.IsPaid {
		existing, err := s.repo.Find(ctx, itemID, ym)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.GroupID != "" {
			return s.RemoveGroup(ctx, existing.GroupID)
		}
		rec, err := s.UpsertRecord(ctx, itemID, ym, resetPatch())
		if err != nil {
			return nil, err
		}
		return []PaymentRecord{rec}, nil
	}

	if err := ValidatePaymentDate(detail.PaidDate, ym); err != nil {
		return nil, err
	}

	paidDate := detail.PaidDate
	if paidDate == nil {
		first := ym.FirstDay()
		paidDate = &first
	}
	method := detail.Method
	if method == "" {
		method = MethodCreditCard
	}

	return s.ApplyGroup(ctx, itemID, ym, detail.MonthsPaid, paidDate, method, detail.Memo, "")
}

// DeletePayment removes the payment history at a cell: a grouped cell resets
// its whole group, a lone record is spliced out of the ledger.
func (s *ServiceImpl) DeletePayment(ctx context.Context, itemID string, ym YearMonth) error {
	existing, err := s.repo.Find(ctx, itemID, ym)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrRecordNotFound
	}
	if existing.GroupID != "" {
		_, err := s.RemoveGroup(ctx, existing.GroupID)
		return err
	}
	_, err = s.DeleteRecord(ctx, itemID, ym)
	return err
}

func resetGroup(ctx context.Context, repo Repository, groupID string) ([]PaymentRecord, error) {
	members, err := repo.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	reset := make([]PaymentRecord, 0, len(members))
	for _, member := range members {
		member.reset()
		if err := repo.Upsert(ctx, member); err != nil {
			return nil, err
		}
		reset = append(reset, member)
	}
	return reset, nil
}

func resetPatch() RecordPatch {
	isPaid := false
	method := Method("")
	memo := ""
	monthsPaid := 1
	groupID := ""
	return RecordPatch{
		IsPaid:           &isPaid,
		ClearPaidDate:    true,
		Method:           &method,
		Memo:             &memo,
		MonthsPaid:       &monthsPaid,
		GroupID:          &groupID,
		ClearPrepaidFrom: true,
	}
}

func copyDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	copied := *d
	return &copied
}
