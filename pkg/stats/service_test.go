package stats

import (
	"context"
	"testing"
	"time"

	"github.com/fixtrack/fixtrack/pkg/item"
	"github.com/fixtrack/fixtrack/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStatsTest(t *testing.T) (*ServiceImpl, *item.StubItemRepo, *payment.StubPaymentRepo, context.Context) {
	itemRepo := item.NewStubItemRepo()
	paymentRepo := payment.NewStubPaymentRepo()
	t.Cleanup(itemRepo.Cleanup)
	t.Cleanup(paymentRepo.Cleanup)
	return NewService(itemRepo, paymentRepo), itemRepo, paymentRepo, context.Background()
}

func storeItem(t *testing.T, repo *item.StubItemRepo, id string, amount *int, active bool) {
	t.Helper()
	require.NoError(t, repo.Store(context.Background(), item.Item{
		ID:        id,
		Name:      id,
		Amount:    amount,
		Active:    active,
		CreatedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func storePaid(t *testing.T, repo *payment.StubPaymentRepo, itemID string, ym payment.YearMonth) {
	t.Helper()
	rec := payment.NewRecord(itemID, ym)
	rec.IsPaid = true
	require.NoError(t, repo.Upsert(context.Background(), rec))
}

func amountOf(v int) *int {
	return &v
}

func TestService_YearlySummary(t *testing.T) {
	t.Run("one paid item out of four is 25 percent", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		for _, id := range []string{"rent", "electricity", "phone", "gym"} {
			storeItem(t, itemRepo, id, amountOf(100), true)
		}
		storePaid(t, paymentRepo, "rent", payment.YearMonth{Year: 2025, Month: time.March})

		// when
		summary, err := service.YearlySummary(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, summary.PaidCount)
		assert.Equal(t, 4, summary.TotalCount)
		assert.Equal(t, 25, summary.Percentage)
		assert.Equal(t, 100, summary.PaidAmount)
	})

	t.Run("an item counts once regardless of paid months", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		storeItem(t, itemRepo, "rent", amountOf(1000), true)
		for k := 0; k < 6; k++ {
			storePaid(t, paymentRepo, "rent", payment.YearMonth{Year: 2025, Month: time.January}.AddMonths(k))
		}

		// when
		summary, err := service.YearlySummary(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, summary.PaidCount)
		assert.Equal(t, 1000, summary.PaidAmount)
	})

	t.Run("paid records from other years do not count", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		storeItem(t, itemRepo, "rent", amountOf(1000), true)
		storePaid(t, paymentRepo, "rent", payment.YearMonth{Year: 2024, Month: time.December})

		// when
		summary, err := service.YearlySummary(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, summary.PaidCount)
		assert.Equal(t, 0, summary.PaidAmount)
	})

	t.Run("inactive items are excluded entirely", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		storeItem(t, itemRepo, "rent", amountOf(1000), true)
		storeItem(t, itemRepo, "old-gym", amountOf(50), false)
		storePaid(t, paymentRepo, "old-gym", payment.YearMonth{Year: 2025, Month: time.March})

		// when
		summary, err := service.YearlySummary(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, summary.PaidCount)
		assert.Equal(t, 1, summary.TotalCount)
	})

	t.Run("empty store yields zero percentage", func(t *testing.T) {
		service, _, _, ctx := setupStatsTest(t)

		summary, err := service.YearlySummary(ctx, 2025)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.Percentage)
	})

	t.Run("percentage is rounded", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		for _, id := range []string{"a", "b", "c"} {
			storeItem(t, itemRepo, id, amountOf(100), true)
		}
		storePaid(t, paymentRepo, "a", payment.YearMonth{Year: 2025, Month: time.March})

		// when
		summary, err := service.YearlySummary(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 33, summary.Percentage)
	})
}

func TestService_MonthlyCashFlow(t *testing.T) {
	t.Run("prepayment lump sum lands in the origin month", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		storeItem(t, itemRepo, "rent", amountOf(1000), true)

		paymentService := payment.NewService(paymentRepo)
		_, err := paymentService.ApplyGroup(ctx, "rent",
			payment.YearMonth{Year: 2025, Month: time.March}, 3, nil, payment.MethodBankTransfer, "", "")
		require.NoError(t, err)

		// when
		totals, err := service.MonthlyCashFlow(ctx, 2025)

		// then
		require.NoError(t, err)
		require.Len(t, totals, 12)
		assert.Equal(t, 3000, totals[int(time.March)-1].Total)
		assert.Equal(t, 0, totals[int(time.April)-1].Total)
		assert.Equal(t, 0, totals[int(time.May)-1].Total)
	})

	t.Run("paid date shifts the record into its effective month", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		storeItem(t, itemRepo, "rent", amountOf(1000), true)

		// a March obligation settled in April
		paidInApril := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)
		late := payment.NewRecord("rent", payment.YearMonth{Year: 2025, Month: time.March})
		late.IsPaid = true
		late.PaidDate = &paidInApril
		require.NoError(t, paymentRepo.Upsert(ctx, late))

		// when
		totals, err := service.MonthlyCashFlow(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, totals[int(time.March)-1].Total)
		assert.Equal(t, 1000, totals[int(time.April)-1].Total)
	})

	t.Run("records without amount or for inactive items contribute zero", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		storeItem(t, itemRepo, "no-amount", nil, true)
		storeItem(t, itemRepo, "inactive", amountOf(500), false)
		storePaid(t, paymentRepo, "no-amount", payment.YearMonth{Year: 2025, Month: time.March})
		storePaid(t, paymentRepo, "inactive", payment.YearMonth{Year: 2025, Month: time.March})

		// when
		totals, err := service.MonthlyCashFlow(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, totals[int(time.March)-1].Total)
	})

	t.Run("unpaid records contribute nothing", func(t *testing.T) {
		// given
		service, itemRepo, paymentRepo, ctx := setupStatsTest(t)
		storeItem(t, itemRepo, "rent", amountOf(1000), true)
		require.NoError(t, paymentRepo.Upsert(ctx,
			payment.NewRecord("rent", payment.YearMonth{Year: 2025, Month: time.March})))

		// when
		totals, err := service.MonthlyCashFlow(ctx, 2025)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, totals[int(time.March)-1].Total)
	})
}

func TestDeactivationPreservesLedger(t *testing.T) {
	// given
	itemRepo := item.NewStubItemRepo()
	paymentRepo := payment.NewStubPaymentRepo()
	t.Cleanup(itemRepo.Cleanup)
	t.Cleanup(paymentRepo.Cleanup)
	ctx := context.Background()

	storeItem(t, itemRepo, "rent", amountOf(1000), true)
	storePaid(t, paymentRepo, "rent", payment.YearMonth{Year: 2025, Month: time.March})

	// when
	_, err := itemRepo.SetActive(ctx, "rent", false)
	require.NoError(t, err)

	// then
	records, err := paymentRepo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
