package payment

import (
	"context"
	"sort"
)

type cellKey struct {
	itemID string
	ym     YearMonth
}

type StubPaymentRepo struct {
	records map[cellKey]PaymentRecord
}

func NewStubPaymentRepo() *StubPaymentRepo {
	return &StubPaymentRepo{records: map[cellKey]PaymentRecord{}}
}

func (s *StubPaymentRepo) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(s)
}

func (s *StubPaymentRepo) Find(ctx context.Context, itemID string, ym YearMonth) (*PaymentRecord, error) {
	if rec, ok := s.records[cellKey{itemID, ym}]; ok {
		copied := rec
		return &copied, nil
	}
	return nil, nil
}

func (s *StubPaymentRepo) Upsert(ctx context.Context, rec PaymentRecord) error {
	s.records[cellKey{rec.ItemID, rec.YearMonth}] = rec
	return nil
}

func (s *StubPaymentRepo) Delete(ctx context.Context, itemID string, ym YearMonth) (bool, error) {
	key := cellKey{itemID, ym}
	if _, ok := s.records[key]; !ok {
		return false, nil
	}
	delete(s.records, key)
	return true, nil
}

func (s *StubPaymentRepo) FindByGroup(ctx context.Context, groupID string) ([]PaymentRecord, error) {
	if groupID == "" {
		return nil, nil
	}
	var recs []PaymentRecord
	for _, rec := range s.records {
		if rec.GroupID == groupID {
			recs = append(recs, rec)
		}
	}
	sortRecords(recs)
	return recs, nil
}

func (s *StubPaymentRepo) GetAll(ctx context.Context) ([]PaymentRecord, error) {
	recs := make([]PaymentRecord, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

func (s *StubPaymentRepo) GetPaid(ctx context.Context) ([]PaymentRecord, error) {
	var recs []PaymentRecord
	for _, rec := range s.records {
		if rec.IsPaid {
			recs = append(recs, rec)
		}
	}
	sortRecords(recs)
	return recs, nil
}

func (s *StubPaymentRepo) StoreAll(ctx context.Context, recs []PaymentRecord) error {
	for _, rec := range recs {
		s.records[cellKey{rec.ItemID, rec.YearMonth}] = rec
	}
	return nil
}

func (s *StubPaymentRepo) DeleteAll(ctx context.Context) error {
	s.records = map[cellKey]PaymentRecord{}
	return nil
}

func (s *StubPaymentRepo) Cleanup() {
	s.records = map[cellKey]PaymentRecord{}
}

func sortRecords(recs []PaymentRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ItemID != recs[j].ItemID {
			return recs[i].ItemID < recs[j].ItemID
		}
		return recs[i].YearMonth.String() < recs[j].YearMonth.String()
	})
}
