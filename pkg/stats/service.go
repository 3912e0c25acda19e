package stats

import (
	"context"
	"math"
	"time"

	"github.com/fixtrack/fixtrack/pkg/item"
	"github.com/fixtrack/fixtrack/pkg/payment"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	YearlySummary(ctx context.Context, year int) (YearlySummary, error)
	MonthlyCashFlow(ctx context.Context, year int) ([]MonthlyTotal, error)
}

type ServiceImpl struct {
	itemRepo    item.Repository
	paymentRepo payment.Repository
}

func NewService(itemRepo item.Repository, paymentRepo payment.Repository) *ServiceImpl {
	return &ServiceImpl{
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
	}
}

// YearlySummary counts settled obligations for the year over active items. An
// item is "paid" when any of its paid records falls in the year, and its
// amount enters the sum once no matter how many months that covers.
func (s *ServiceImpl) YearlySummary(ctx context.Context, year int) (YearlySummary, error) {
	items, err := s.itemRepo.GetAll(ctx, false)
	if err != nil {
		return YearlySummary{}, err
	}
	paid, err := s.paymentRepo.GetPaid(ctx)
	if err != nil {
		return YearlySummary{}, err
	}

	paidItems := make(map[string]bool)
	for _, record := range paid {
		if record.YearMonth.Year == year {
			paidItems[record.ItemID] = true
		}
	}

	summary := YearlySummary{Year: year, TotalCount: len(items)}
	for _, it := range items {
		if !paidItems[it.ID] {
			continue
		}
		summary.PaidCount++
		if it.Amount != nil {
			summary.PaidAmount += *it.Amount
		}
	}
	if summary.TotalCount > 0 {
		summary.Percentage = int(math.Round(float64(summary.PaidCount) / float64(summary.TotalCount) * 100))
	}

	log.Tracef("Yearly summary for %d: %d/%d paid", year, summary.PaidCount, summary.TotalCount)
	return summary, nil
}

// MonthlyCashFlow books each paid record in its effective payment month: the
// paid date's month when one is set, the record's own month otherwise. A
// prepayment lump sum lands entirely at the origin (amount times monthsPaid)
// and its follow-ons contribute nothing. Inactive items and items without an
// amount are skipped.
func (s *ServiceImpl) MonthlyCashFlow(ctx context.Context, year int) ([]MonthlyTotal, error) {
	items, err := s.itemRepo.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	paid, err := s.paymentRepo.GetPaid(ctx)
	if err != nil {
		return nil, err
	}

	amounts := make(map[string]int, len(items))
	for _, it := range items {
		if it.Amount != nil {
			amounts[it.ID] = *it.Amount
		}
	}

	totals := make([]MonthlyTotal, 12)
	for i := range totals {
		totals[i].Month = time.Month(i + 1)
	}

	for _, record := range paid {
		if record.IsFollowOn() {
			continue
		}
		amount, ok := amounts[record.ItemID]
		if !ok {
			continue
		}
		effective := record.EffectiveMonth()
		if effective.Year != year {
			continue
		}
		totals[int(effective.Month)-1].Total += amount * record.MonthsPaid
	}

	return totals, nil
}
